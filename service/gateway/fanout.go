package gateway

import "snapcap/tools/safe"

type fanoutJob struct {
	conns   []*WsConn
	payload []byte
}

// Fanout spreads room broadcasts over a fixed worker pool so one large room
// cannot stall the read loop.
type Fanout struct {
	jobs chan fanoutJob
}

func NewFanout(workers, queue int) *Fanout {
	if workers <= 0 {
		workers = 4
	}
	if queue <= 0 {
		queue = 256
	}
	f := &Fanout{jobs: make(chan fanoutJob, queue)}
	for i := 0; i < workers; i++ {
		safe.Go(f.worker)
	}
	return f
}

func (f *Fanout) worker() {
	for job := range f.jobs {
		for _, c := range job.conns {
			send(c, job.payload)
		}
	}
}

// send never blocks: slow clients are skipped, and a concurrently closed
// connection is ignored.
func send(c *WsConn, payload []byte) {
	defer func() { _ = recover() }() // Send may be closed during disconnect
	select {
	case c.Send <- payload:
	default:
	}
}

// Broadcast enqueues one payload for a set of connections.
func (f *Fanout) Broadcast(conns []*WsConn, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	f.jobs <- fanoutJob{conns: conns, payload: payload}
}

// Close stops the workers once pending jobs drain.
func (f *Fanout) Close() { close(f.jobs) }
