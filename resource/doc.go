// Package resource provides the UI-side table of native state that mirrors
// bridged script objects.
//
// Mirrors are keyed by the pair (context identity, object identity), the same
// pair a dispose command carries, so the UI thread can find the native value
// for any command it drains:
//
//	table := resource.NewTable()
//
//	// Insert the native value when the object is created
//	table.Insert(resource.Key{Context: 7, Object: 42}, eventTarget)
//
//	// Retrieve it by key
//	value, ok := table.Get(resource.Key{Context: 7, Object: 42})
//
//	// Remove it when the dispose command arrives
//	value, ok := table.Remove(resource.Key{Context: 7, Object: 42})
//
// # Stale Keys
//
// Removing a key that is not present is a no-op that reports false. A dispose
// command for a context whose mirrors were already dropped with
// RemoveContext is therefore harmless.
//
// # Observers
//
// Register observers to track mirror lifecycle events:
//
//	table.Subscribe(observer)
//
//	func (o *myObserver) OnResourceEvent(event resource.Event) {
//	    switch event.Type {
//	    case resource.EventCreated:
//	        log.Printf("mirror %v created", event.Key)
//	    case resource.EventDropped:
//	        log.Printf("mirror %v dropped", event.Key)
//	    }
//	}
//
// # Memory Management
//
// Values that implement Dropper have Drop called exactly once, when they
// leave the table through Remove, RemoveContext, Clear or Close.
package resource
