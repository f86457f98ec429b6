// Package client runs API requests through the pipeline that encodes
// parameters, consults the response cache, authorizes, transmits, classifies
// and decodes. Every submission completes exactly once unless it is cancelled
// first, in which case it never completes.
//
//	c, _ := client.New(client.Config{}, session, client.WithAuth(state))
//	task := client.Submit[Video](ctx, c, endpoint.New("/videos/1"))
//	resp, err := task.Await(ctx)
package client
