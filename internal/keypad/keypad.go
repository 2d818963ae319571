package keypad

import (
	"log"

	"github.com/san-kum/bombprop/internal/logx"
)

const DefaultQueueSize = 10

// RawKeySource is polled once per tick; it returns NoKey when no new press
// was detected.
type RawKeySource interface {
	PollKey() Key
}

// KeyStateSource is implemented by sources that can report held keys.
type KeyStateSource interface {
	AnyPressed() bool
}

// Keypad buffers key presses from a RawKeySource.
type Keypad struct {
	src     RawKeySource
	queue   *Queue
	allowed bool
	log     *log.Logger
}

func New(src RawKeySource, queueSize int, logger *log.Logger) *Keypad {
	return &Keypad{
		src:     src,
		queue:   NewQueue(queueSize),
		allowed: true,
		log:     logx.OrDiscard(logger),
	}
}

// Tick polls the source once and buffers a pressed key when enqueuing is allowed.
func (k *Keypad) Tick() {
	if !k.allowed {
		return
	}
	key := k.src.PollKey()
	if key == NoKey {
		return
	}
	if !k.queue.Enqueue(key) {
		k.log.Printf("queue is full, dropped key %q", rune(key))
		return
	}
	k.log.Printf("enqueued key %q", rune(key))
}

// Key returns the oldest buffered key, or NoKey.
func (k *Keypad) Key() Key {
	key, _ := k.queue.Dequeue()
	return key
}

func (k *Keypad) HasKey() bool { return k.queue.HasItem() }

func (k *Keypad) Buffered() int { return k.queue.Len() }

func (k *Keypad) Reset() {
	k.log.Println("resetting queue")
	k.queue.Reset()
}

// SetEnqueueAllowed gates future Tick enqueues. Buffered keys are kept.
func (k *Keypad) SetEnqueueAllowed(allowed bool) {
	k.log.Printf("allowed to enqueue set to %t", allowed)
	k.allowed = allowed
}

func (k *Keypad) EnqueueAllowed() bool { return k.allowed }

// IsAnyKeyPressed reports whether a key is currently held down. Sources that
// cannot report held keys always yield false.
func (k *Keypad) IsAnyKeyPressed() bool {
	if s, ok := k.src.(KeyStateSource); ok {
		return s.AnyPressed()
	}
	return false
}
