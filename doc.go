// Package pilosa is a client for the Pilosa distributed bitmap index database.
//
// The client maintains the schema, builds PQL queries and imports large
// volumes of records into the server.
//
// Importing works on streams: a RecordIterator produces Column or FieldValue
// records, and Client.ImportField reads them in batches, partitions each
// batch by shard and sends every shard group to the cluster nodes owning its
// fragments. Import workers run concurrently; see ImportOptions for the
// knobs.
//
// Iterators over CSV data are in the csv sub-package; kafka topics and S3
// buckets are covered by the kafka and aws/s3 sub-packages.
//
// A minimal import looks like this:
//
//	client := pilosa.DefaultClient()
//	schema, err := client.Schema()
//	if err != nil {
//		log.Fatal(err)
//	}
//	index := schema.Index("my-index")
//	field := index.Field("my-field")
//	err = client.SyncSchema(schema)
//	if err != nil {
//		log.Fatal(err)
//	}
//	iterator := csv.NewColumnIterator(csv.RowIDColumnID, file)
//	err = client.ImportField(field, iterator)
//	if err != nil {
//		log.Fatal(err)
//	}
package pilosa
