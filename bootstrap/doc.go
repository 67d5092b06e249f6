// Package bootstrap runs the subtitler lifecycle: start registered
// components, run configure callbacks, print a startup summary, then either
// block until a signal (Run) or execute one finite task (RunTask) before a
// graceful shutdown.
//
//	app, err := bootstrap.NewApp(&cfg)
//	_ = app.RegisterComponent(storageComponent)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*app.Config]) error {
//	    return a.RegisterComponent(server)
//	})
//	err = app.Run(ctx)
package bootstrap
