// Package boreas provides an embeddable request-dispatch core for combined
// HTTP and WebSocket servers.
//
// Boreas maps an incoming method and path, or an in-band WebSocket message
// envelope, to a registered handler. It extracts and type-converts parameters
// from the path, the query string, or the message body, and invokes the
// handler against a per-connection execution context. Transport concerns such
// as TLS, HTTP wire parsing, compression, and template rendering are left to
// the surrounding server; boreas consumes an already-parsed request and
// produces a handler invocation result.
//
// # Quick Start
//
// Create a dispatcher, register routes, and serve:
//
//	dispatcher := boreas.NewDispatcher(&boreas.Config{PatternRouting: true})
//
//	handler, _ := boreas.NewFuncHandler(
//	    func(ctx *boreas.Context, args []any) (any, error) {
//	        return fetchUser(args[0].(uuid.UUID))
//	    },
//	    boreas.Param("id", boreas.UUIDParam),
//	)
//
//	if err := dispatcher.AddRoute("GET", "/users/{id}", handler); err != nil {
//	    log.Fatal(err)
//	}
//
//	http.ListenAndServe(":8080", dispatcher)
//
// # Routing
//
// A route table runs in one of two modes for its entire lifetime. Literal
// mode stores routes in a hash map keyed by method and path, giving O(1)
// lookup with no pattern support. Pattern mode keeps routes in registration
// order and scans them linearly, matching templates with named parameters
// and wildcards:
//
//	dispatcher.AddRoute("GET", "/users/list", handler)    // exact path
//	dispatcher.AddRoute("GET", "/users/{id}", handler)    // one named segment
//	dispatcher.AddRoute("GET", "/files/*", handler)       // rest of the path
//
// In pattern mode the first matching route wins, so more specific routes
// must be registered before more general ones. This is a documented ordering
// contract, not incidental behavior.
//
// All registration must happen before the server begins accepting
// connections. After that point the table is read-only, which is what allows
// lookup and binding to run lock-free under arbitrary concurrent load.
//
// # WebSocket Messages
//
// WebSocket clients exchange JSON envelopes:
//
//	{"url": "/chat/send", "body": {"text": "hi"}}
//
// The envelope url is resolved against the same route table under the
// pseudo-method "WEBSOCKET". An envelope with a null url is a connection
// registration event: the connection is added to the session registry and,
// if a jwt field is present, its token is validated and attached to the
// session.
//
// # Sessions
//
// Registered connections are tracked by the session registry and can be
// addressed by session ID from anywhere in the application:
//
//	dispatcher.Registry().Send(sessionID, notification)
//
// A registry can be bridged across server instances with the localbridge or
// natsbridge subpackages.
package boreas
