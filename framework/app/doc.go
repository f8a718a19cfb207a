// Package app boots a container with the framework providers and serves
// its router over HTTP.
//
//	a, err := app.New(
//	    app.WithConfig(config.WithEnvFile(".env"), config.WithYAMLFile("application.yml")),
//	    app.WithProviders(&hello.Provider{}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	err = a.Run(ctx)
package app
