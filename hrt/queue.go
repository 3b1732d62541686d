package hrt

// Callback is a scheduled action. It runs in interrupt context and must not
// block or wait; it may schedule or cancel callouts, including its own.
type Callback func(arg interface{})

// Call is a caller-owned callout record. The zero value is ready to use.
// The caller owns the storage and must keep it alive while the callout is
// pending; a Call belongs to at most one queue position at a time.
type Call struct {
	deadline uint64 // absolute microseconds; 0 means not scheduled
	period   uint64 // microseconds; 0 means one-shot
	callback Callback
	arg      interface{}

	next   *Call
	prev   *Call
	queued bool
}

// Called reports whether the callout is not currently pending: it has fired,
// been cancelled, or was never scheduled.
func (c *Call) Called() bool {
	return c.deadline == 0
}

// Period returns the interval recorded by CallEvery, or 0 for a one-shot.
// Periodic callbacks use this to re-arm themselves.
func (c *Call) Period() uint64 {
	return c.period
}

// callQueue is the pending-callout list, ordered ascending by deadline with
// equal deadlines kept in insertion order. Links are intrusive in the Call
// records, so removal is O(1) and no allocation happens on any path.
type callQueue struct {
	head *Call
	tail *Call
}

// insert links c into deadline order. c must not already be queued. The scan
// inserts after all entries with deadline <= c.deadline, which gives the
// first-scheduled-first-served tie-break.
func (q *callQueue) insert(c *Call) {
	var prev *Call
	for cur := q.head; cur != nil; cur = cur.next {
		if cur.deadline > c.deadline {
			break
		}
		prev = cur
	}

	c.prev = prev
	if prev == nil {
		c.next = q.head
		q.head = c
	} else {
		c.next = prev.next
		prev.next = c
	}

	if c.next == nil {
		q.tail = c
	} else {
		c.next.prev = c
	}
	c.queued = true
}

// remove unlinks c if present. Safe to call on an unqueued or never-scheduled
// callout; that is a no-op, not an error.
func (q *callQueue) remove(c *Call) {
	if !c.queued {
		return
	}

	if c.prev == nil {
		q.head = c.next
	} else {
		c.prev.next = c.next
	}
	if c.next == nil {
		q.tail = c.prev
	} else {
		c.next.prev = c.prev
	}

	c.next = nil
	c.prev = nil
	c.queued = false
}

// peek returns the earliest pending callout without removing it, or nil.
func (q *callQueue) peek() *Call {
	return q.head
}
