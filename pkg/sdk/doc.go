// Package orgrank embeds the orgrank search pipeline in a Go program.
//
// The client loads a catalog, builds a vector index in memory (or in
// Valkey/Redis with the search module) and answers ranked queries without an
// HTTP hop:
//
//	client, _ := orgrank.New(ctx, orgrank.WithCatalogFile("data/orgs.json"))
//	defer client.Close()
//
//	page, _ := client.Search(ctx, orgrank.Query{
//	    Text:  "veterans housing",
//	    Zip:   "94103",
//	    Sort:  orgrank.SortDistance,
//	    Limit: 5,
//	})
//	for _, r := range page.Results {
//	    fmt.Println(r.Record.Name, r.Scores.Final, r.Explain)
//	}
//
// Without WithEmbedder the client uses a deterministic offline hashing
// embedder, which is enough for demos and tests but not for real relevance.
package orgrank
