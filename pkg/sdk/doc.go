// Package pravnik provides an embedded Go client for the pravnik legal
// document assistant: ingestion, retrieval and chat over a PostgreSQL +
// pgvector corpus, without running the HTTP server.
//
//	client, _ := pravnik.New(ctx,
//	    pravnik.WithPostgres("postgres://localhost:5432/pravnik"),
//	    pravnik.WithOpenAI(os.Getenv("OPENAI_API_KEY"), ""),
//	)
//	defer client.Close()
//
//	_, _ = client.Ingest().Dir(ctx, "./zmluvy", pravnik.DocumentMeta{
//	    DocumentType: "contract",
//	    Jurisdiction: "SK",
//	})
//
//	answer, _ := client.Chat().Ask(ctx, pravnik.ChatRequest{
//	    Message: "Aká je výpovedná lehota?",
//	})
package pravnik
