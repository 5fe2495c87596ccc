package common

import (
	"strings"
	"testing"

	"github.com/bobmcallan/advisor/internal/models"
)

func TestNotifier_DeliversInOrderAndUnsubscribes(t *testing.T) {
	var n Notifier
	var got []string

	unsubA := n.Subscribe(func(ev models.ChangeEvent) { got = append(got, "a:"+string(ev.Kind)) })
	n.Subscribe(func(ev models.ChangeEvent) { got = append(got, "b:"+string(ev.Kind)) })

	n.Publish(models.ChangeEvent{Slice: models.SliceUsers, Kind: models.ChangeCreated})
	unsubA()
	n.Publish(models.ChangeEvent{Slice: models.SliceUsers, Kind: models.ChangeRemoved})

	want := []string{"a:created", "b:created", "b:removed"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestNotifier_SubscriberMayResubscribe(t *testing.T) {
	var n Notifier
	calls := 0
	n.Subscribe(func(models.ChangeEvent) {
		calls++
		n.Subscribe(func(models.ChangeEvent) {})
	})
	n.Publish(models.ChangeEvent{})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
