// Package resttree composes REST API clients from a transport, a tree of
// endpoints, and lightweight resource models, so application code can
// address remote resources through path navigation instead of hand-built
// URLs.
//
// # Overview
//
// A Client owns a base URL, credentials, default headers and params, and
// an optional response cache. Endpoints are addressable path segments
// linked into a tree: a node's effective path is the join of its
// ancestors' segments, and navigating to a child that does not exist yet
// materializes it on the spot. Verb calls on an endpoint resolve the full
// path and delegate to the owning client, which dispatches through a
// retrying transport.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/resttree-io/resttree/pkg/resttree"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  client, err := resttree.New("https://api.example.com/")
//	  if err != nil { log.Fatal(err) }
//
//	  users := client.Endpoint("users")
//	  resp, err := users.Child("42").Get(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = resp
//	}
//
// # Caching
//
// Supplying a Cache to a client or endpoint memoizes verb calls by their
// full call signature. Without a cache every call goes to the wire. The
// package ships in-memory, NATS KV, chained, and no-op backends; see
// NewCacheFromConfig.
//
// # Concurrency
//
// The client and endpoint tree perform no internal locking. Sharing a
// client across goroutines is safe as long as its defaults and the child
// sets of its endpoints are not mutated concurrently; serialize tree
// mutation and header/param updates yourself. The MemoryCache backend is
// internally synchronized and safe to share.
package resttree
