// Package authflow coordinates the asynchronous workflows of an
// authentication front end: sign-in, password recovery and SMS resend.
//
// Intents are dispatched as actions to a single-writer store; reducers fold
// them into per-feature workflow state while a coordinator runs the latest
// worker per feature against the authentication API:
//
//	srv, _ := authflow.New(authflow.WithConfig(cfg))
//	_ = srv.Start(ctx)
//	defer srv.Shutdown()
//	_ = srv.BuildRecoveryModel(ctx, query, newPassword)
//	_, err := srv.Execute(ctx, recovery.RequestPasswordRecovery(code))
//
// Results of superseded workers never reach the state.
package authflow
