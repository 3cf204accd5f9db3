package message

import "testing"

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	a, unsubA := hub.Subscribe(1)
	b, unsubB := hub.Subscribe(1)
	other, unsubOther := hub.Subscribe(2)
	defer unsubB()
	defer unsubOther()

	hub.Publish(Message{ID: 10, ConversationID: 1})

	for name, ch := range map[string]<-chan Message{"a": a, "b": b} {
		select {
		case m := <-ch:
			if m.ID != 10 {
				t.Errorf("%s got message %d", name, m.ID)
			}
		default:
			t.Errorf("%s received nothing", name)
		}
	}
	select {
	case m := <-other:
		t.Errorf("conversation 2 subscriber got %+v", m)
	default:
	}

	unsubA()
	unsubA()
	if _, open := <-a; open {
		t.Error("channel should be closed after unsubscribe")
	}
	if n := hub.Subscribers(1); n != 1 {
		t.Errorf("Subscribers(1) = %d, want 1", n)
	}
}

func TestHubPublishDoesNotBlock(t *testing.T) {
	hub := NewHub()
	_, unsub := hub.Subscribe(1)
	defer unsub()
	for i := 0; i < 100; i++ {
		hub.Publish(Message{ID: uint(i), ConversationID: 1})
	}
}
