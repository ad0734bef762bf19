// Package searchstate embeds search session state management in a Go
// program, backed by Valkey or Redis.
//
// A session holds the argument tree of one search interaction: the raw user
// query, paging and active facets. Every operation returns the session
// together with the backend (Solr style) parameters it renders to.
//
//	client, _ := searchstate.New(ctx,
//	    searchstate.WithValkey("localhost:6379", ""),
//	    searchstate.WithQueryFields("title^5.0, content^0.4"),
//	    searchstate.WithPhraseFields("title^10.0"),
//	)
//	defer client.Close()
//
//	sessions := client.Sessions()
//	s, _ := sessions.Open(ctx, "", map[string]any{"q": "solar panels"})
//	s, _ = sessions.AddFacet(ctx, s.ID, "type", "pdf")
//	drill, _ := sessions.SubRequest(ctx, s.ID, true)
//	fmt.Println(drill.Params.Encode())
package searchstate
