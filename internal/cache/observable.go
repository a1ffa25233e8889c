package cache

import "sync"

// Observer is implemented by consumers that want a signal whenever the data
// they read from a cache manager may have changed.
type Observer interface {
	OnChanged()
}

// Observable is the subscribe/unsubscribe/notify mechanism every cache
// manager embeds. Observers are notified synchronously, in registration
// order, on whatever goroutine the connector's callback arrives on. There is
// no filtering and no coalescing: every observer sees every change.
type Observable struct {
	mu        sync.Mutex
	observers []Observer
}

func (o *Observable) Subscribe(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, existing := range o.observers {
		if existing == obs {
			return
		}
	}
	o.observers = append(o.observers, obs)
}

func (o *Observable) Unsubscribe(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, existing := range o.observers {
		if existing == obs {
			o.observers = append(o.observers[:i], o.observers[i+1:]...)
			return
		}
	}
}

// NotifyAll calls each observer's OnChanged. The observer list is copied
// under the lock so an observer may unsubscribe itself during the callback.
func (o *Observable) NotifyAll() {
	o.mu.Lock()
	observers := append([]Observer{}, o.observers...)
	o.mu.Unlock()

	for _, obs := range observers {
		obs.OnChanged()
	}
}

// ObserverFunc adapts a plain function to the Observer interface. Use a
// pointer so subscribe and unsubscribe can match the same handle.
type ObserverFunc struct {
	F func()
}

func (f *ObserverFunc) OnChanged() { f.F() }
