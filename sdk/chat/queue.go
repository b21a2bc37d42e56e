package chat

// sendQueue buffers outbound actions issued while the client is not
// authenticated. Not safe for concurrent use; the client guards it with its
// own mutex so queue order matches call order.
type sendQueue struct {
	items []outbound
}

func (q *sendQueue) push(a outbound) {
	q.items = append(q.items, a)
}

// pushFront re-buffers an action whose send failed mid-flush, keeping it
// first in line for the next drain.
func (q *sendQueue) pushFront(a outbound) {
	q.items = append([]outbound{a}, q.items...)
}

func (q *sendQueue) pop() (outbound, bool) {
	if len(q.items) == 0 {
		return outbound{}, false
	}
	a := q.items[0]
	q.items = q.items[1:]
	return a, true
}

func (q *sendQueue) len() int {
	return len(q.items)
}

func (q *sendQueue) clear() {
	q.items = nil
}
