package store

import "github.com/arcs-core/arcs/pkg/model"

// SerialDispatcher feeds ProxyMessages to a ReferenceModeStore one at a
// time from a single goroutine, so callers on different goroutines can
// hand it messages concurrently without taking on the store's own
// "not goroutine-safe by default" contract themselves. It makes no
// ordering promise beyond FIFO per dispatcher: two callers racing to
// submit are served in whichever order their sends land in the channel.
type SerialDispatcher struct {
	store *ReferenceModeStore

	in   chan dispatchRequest
	done chan struct{}
}

type dispatchRequest struct {
	msg    model.ProxyMessage
	result chan<- dispatchResult
}

type dispatchResult struct {
	reply *model.ProxyMessage
	err   error
}

// NewSerialDispatcher starts the dispatch loop for store. Callers must
// call Close when done to stop the goroutine.
func NewSerialDispatcher(store *ReferenceModeStore) *SerialDispatcher {
	d := &SerialDispatcher{
		store: store,
		in:    make(chan dispatchRequest),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *SerialDispatcher) run() {
	defer close(d.done)
	for req := range d.in {
		reply, err := d.store.HandleProxyMessage(req.msg)
		req.result <- dispatchResult{reply: reply, err: err}
	}
}

// Submit enqueues msg and blocks until the dispatcher has processed it,
// returning whatever HandleProxyMessage returned.
func (d *SerialDispatcher) Submit(msg model.ProxyMessage) (*model.ProxyMessage, error) {
	result := make(chan dispatchResult, 1)
	d.in <- dispatchRequest{msg: msg, result: result}
	r := <-result
	return r.reply, r.err
}

// Close stops accepting new messages and waits for the dispatch loop to
// drain and exit. Submit must not be called after Close returns.
func (d *SerialDispatcher) Close() {
	close(d.in)
	<-d.done
}
