// Package script runs JavaScript against an ExecutingContext using goja.
//
// The runtime installs three globals: document, window and console. Every
// DOM object is reached through the binding layer, so a script exercises
// the same boundary calls a Go caller would:
//
//	rt := script.New(engine.Context())
//	defer rt.Close()
//	_, err := rt.Run("main.js", `
//	    window.addEventListener("hashchange", e => console.log(e.newURL));
//	    window.location.hash = "#a";
//	`)
//
// JavaScript objects for nodes are cached per native handle, so two reads of
// the same node compare equal with ===. A native exception surfaces in
// JavaScript as a thrown Error whose message is the native message.
//
// A Runtime is not safe for concurrent use. Listeners run on the goroutine
// that triggered the dispatch.
package script
