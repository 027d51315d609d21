// Package health answers liveness and readiness probes for p3ac watch
// mode.
//
// # Endpoints
//
//   - /health: liveness, 200 while the process serves requests
//   - /ready: readiness, 200 only when every registered check passes
//   - /version: binary version and Go runtime
//
// # Checks
//
// Components register named checks. Readiness runs them concurrently,
// each under the checker's timeout:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("history", health.PingCheck(store))
//	checker.RegisterCheck("manifest", health.BuildCheck(func() health.BuildState {
//		...
//	}))
//
// A watch process that has not completed its first build, or whose last
// build was rejected, reports not ready; the manifest on disk is then
// missing or stale.
package health
