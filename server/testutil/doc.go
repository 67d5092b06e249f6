// Package testutil runs a server.Server behind httptest for handler tests.
//
//	srv := testutil.NewComponent(func(e *gin.Engine) { web.Register(e, handlers) })
//	testutil.Start(t, srv)
//	resp, _ := http.Get(srv.URL("/"))
package testutil
