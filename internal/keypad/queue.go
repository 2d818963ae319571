package keypad

// Key is a character produced by the keypad. NoKey marks "nothing pressed".
type Key byte

const NoKey Key = 0

func (k Key) String() string {
	if k == NoKey {
		return "<none>"
	}
	return string(rune(k))
}

// Queue is a fixed-capacity FIFO ring buffer of keys.
type Queue struct {
	buf   []Key
	head  int
	tail  int
	count int
}

// NewQueue returns a queue holding up to capacity keys. A capacity below one
// is raised to one.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{buf: make([]Key, capacity)}
}

// Enqueue appends k and reports false without modifying the queue when full.
func (q *Queue) Enqueue(k Key) bool {
	if q.count == len(q.buf) {
		return false
	}
	q.buf[q.tail] = k
	q.tail = (q.tail + 1) % len(q.buf)
	q.count++
	return true
}

// Dequeue removes the oldest key. It returns NoKey, false when empty.
func (q *Queue) Dequeue() (Key, bool) {
	if q.count == 0 {
		return NoKey, false
	}
	k := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return k, true
}

// Reset empties the queue; capacity is unchanged.
func (q *Queue) Reset() {
	q.head, q.tail, q.count = 0, 0, 0
}

func (q *Queue) Len() int      { return q.count }
func (q *Queue) Cap() int      { return len(q.buf) }
func (q *Queue) HasItem() bool { return q.count > 0 }
