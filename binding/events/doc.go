// Package events holds concrete event wrappers. Each one embeds
// binding.Event and is served by a table that embeds binding.EventMethodTable
// by value, so the same table serves both levels.
//
//	l := binding.NewEventListener(func(e *binding.Event) {
//	    hc, ok := events.AsHashchangeEvent(e)
//	    if !ok {
//	        return
//	    }
//	    fmt.Println(hc.OldURL(), "->", hc.NewURL())
//	})
package events
