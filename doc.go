// Package linkpath finds chains of links between two wiki pages.
//
// Starting from one page, linkpath follows outbound links until it reaches
// a goal page or runs out of depth. Instead of expanding every link, it
// embeds the link titles together with the goal title and keeps the most
// similar ones, keeping more candidates near the start of the path and
// fewer as the search gets deeper.
//
// # Basic Usage
//
// Build a client from configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := linkpath.NewFromConfig(cfg, logger.NewDefaultLogger(slog.LevelInfo), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// Or assemble one from its parts:
//
//	wikiClient := wiki.NewClient(http.DefaultClient, wiki.Config{}, logger, nil)
//	emb := embedder.NewOpenAIEmbedder("your-api-key", embedder.Config{Model: "text-embedding-3-small"})
//	client, err := linkpath.NewClient(wikiClient, wikiClient, emb, nil, logger)
//
// # Finding Paths
//
//	res, err := client.FindPath(ctx, "2005 Azores subtropical storm", "Global Positioning System", 3)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if res.Found() {
//		fmt.Println(strings.Join(res.Path, " -> "), res.HopCount)
//	}
//
// A search that exhausts every branch is not an error: the result has a nil
// Path. Errors are reserved for failed lookups of the start or goal page,
// embedding failures, cancellation and exhausted expansion budgets.
//
// # Caching
//
// Link lists and canonical titles are cached for the lifetime of a Client,
// so repeated searches against the same pages do not hit the wiki again.
// With cache.enabled set, link lists are also persisted to a Badger
// database and reused across runs.
//
// # Components
//
//   - wiki: MediaWiki action API client with rate limiting and retries
//   - links: provider and resolver interfaces, in-memory caches and the link store
//   - embedder: OpenAI-compatible and local embedding clients
//   - ranker: embedding-based candidate ranking with a depth-shrinking beam
//   - search: the bounded-depth path search engine
//   - server: HTTP API
//   - metrics: Prometheus collectors
package linkpath
