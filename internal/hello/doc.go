// Package hello is a small application built on the container: a
// configuration bean with a clock factory, a logged greeter proxy and a
// controller.
//
//	a, err := app.New(app.WithProviders(&hello.Provider{}))
//	...
//	GET /hello/alice → {"data":{"message":"Hello, alice! It is 09:30 UTC."}}
package hello
