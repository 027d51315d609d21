// Package history records compiled builds in a SQLite database.
//
// Every build, successful or not, is stored with its outcome, counts, the
// manifest digest and the git commit it was built from. Failed builds also
// keep one row per rejected declaration, so that "p3ac history" can show
// which metrics broke a build.
//
// Records older than the configured retention are removed by a Pruner,
// which a Scheduler runs on a cron schedule in watch mode.
package history
