// Package api provides the token-authenticated HTTP server of container-check.
//
// Key components:
//   - API: Routes requests to registered handlers behind bearer token authentication.
//   - RunHTTPServer: Serves until the context is done and shuts down gracefully.
//
// Usage example:
//
//	server := api.New(token, api.Addr("", "8080"))
//	server.RegisterFunc("/v1/check", handler.Handle)
//	if err := server.Start(ctx, true); err != nil {
//	    logrus.WithError(err).Error("HTTP API failed")
//	}
package api
