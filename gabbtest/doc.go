// Package gabbtest provides an in-process fake of the FiLIP service for
// exercising code built on the gabb client without touching the real API.
//
// The fake honors the service's surface closely enough that the client
// cannot tell the difference: credential and refresh exchanges issue real
// token pairs, every resource route sits behind the bearer gate and answers
// 401 with the service's error body when the token is missing, unknown or
// expired, v2 responses arrive in the data envelope, and the legacy safe
// zone routes answer bare TitleCase JSON with quoted radius values.
//
// A typical test seeds state, builds a client against the fake and drives
// the flow under test:
//
//	server := gabbtest.NewServer()
//	defer server.Close()
//
//	device := server.SeedDevice(gabb.MapDevice{Name: "Riley", Battery: 82})
//
//	client, err := server.Client()
//	if err != nil {
//		t.Fatal(err)
//	}
//	if err := client.Authenticate(ctx); err != nil {
//		t.Fatal(err)
//	}
//
// ExpireSessions and RevokeSessions force the token lifecycle paths: the
// former leaves refresh tokens valid so RefreshSession recovers, the latter
// invalidates everything so only a fresh Authenticate does.
package gabbtest
