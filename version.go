package pilosa

// Version is the current version of this client.
const Version = "1.3.0"
