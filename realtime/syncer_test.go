package realtime_test

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"barberbot/model"
	"barberbot/realtime"
)

type stubConversations struct {
	list []model.Conversation
}

func (s *stubConversations) ListForUser(userID string) ([]model.Conversation, error) {
	return s.list, nil
}

type stubMessages struct {
	list []model.Message
}

func (s *stubMessages) ListForUser(userID string) ([]model.Message, error) {
	return s.list, nil
}

func TestSyncerRefetchesOnEvent(t *testing.T) {
	hub := realtime.NewHub()
	convos := &stubConversations{list: []model.Conversation{{ID: "c1", UserID: "u1"}}}
	syncer := realtime.NewSyncer(hub, convos, &stubMessages{}, logrus.New())

	got := make(chan []model.Conversation, 1)
	cancel := syncer.SubscribeConversations("u1", func(list []model.Conversation) {
		got <- list
	})
	defer cancel()

	hub.Notify(realtime.Event{Table: realtime.TableConversations, UserID: "u1", Action: realtime.ActionUpdate})

	select {
	case list := <-got:
		if len(list) != 1 || list[0].ID != "c1" {
			t.Fatalf("unexpected collection: %+v", list)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a refreshed collection")
	}
}

func TestSyncerStopsAfterCancel(t *testing.T) {
	hub := realtime.NewHub()
	syncer := realtime.NewSyncer(hub, &stubConversations{}, &stubMessages{}, logrus.New())

	got := make(chan []model.Message, 8)
	cancel := syncer.SubscribeMessages("u1", func(list []model.Message) {
		got <- list
	})

	cancel()
	hub.Notify(realtime.Event{Table: realtime.TableMessages, UserID: "u1", Action: realtime.ActionInsert})

	select {
	case <-got:
		t.Fatal("callback fired after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}
