// Package services provides the request, session and dispatcher services that
// view engine getter shortcuts (get, getQuery, getSession, getParam, ...) are
// routed to. Register binds them into a di.Container under the names the
// engine package expects.
package services
