// Package vectorindex implements the nearest-neighbour service over the org catalog.
//
// Two backends share one contract: Build embeds every record's index text once
// at startup, Search embeds the query and returns hits ordered by cosine
// similarity. Memory keeps normalized vectors in process and scans them;
// Valkey stores them as hashes behind an FT vector index.
package vectorindex
