package gateway

import (
	"context"
	"time"

	"github.com/pkg/errors"

	notifmodel "snapcap/module/notification/model"
	notifsvc "snapcap/module/notification/service"
)

func registerHandlers(d *Dispatcher) {
	d.Register(FrameJoinConversation, handleJoinConversation)
	d.Register(FrameLeaveConversation, handleLeaveConversation)
	d.Register(FrameTypingStart, handleTyping(true))
	d.Register(FrameTypingStop, handleTyping(false))
	d.Register(FrameInteraction, handleInteraction)
}

func handleJoinConversation(_ context.Context, s *Server, conn *WsConn, f *Frame) error {
	if f.ConversationID == "" {
		return errors.New("join_conversation requires conversationId")
	}
	s.connMgr.Join(conn.ConnID, RoomConversation(f.ConversationID))
	return nil
}

func handleLeaveConversation(_ context.Context, s *Server, conn *WsConn, f *Frame) error {
	if f.ConversationID == "" {
		return errors.New("leave_conversation requires conversationId")
	}
	s.connMgr.Leave(conn.ConnID, RoomConversation(f.ConversationID))
	return nil
}

func handleTyping(typing bool) HandlerFunc {
	return func(_ context.Context, s *Server, conn *WsConn, f *Frame) error {
		if f.ConversationID == "" {
			return errors.New("typing requires conversationId")
		}
		s.BroadcastRoomExcept(RoomConversation(f.ConversationID), conn, &Event{
			Type:           EventUserTyping,
			UserID:         conn.UserID,
			ConversationID: f.ConversationID,
			Typing:         typing,
			TS:             time.Now().UnixMilli(),
		})
		return nil
	}
}

// handleInteraction persists a notification for the target (self-notification
// suppressed inside Notify) and relays it to the target's room via the
// registered relays.
func handleInteraction(ctx context.Context, s *Server, conn *WsConn, f *Frame) error {
	if !notifmodel.ValidType(f.Interaction) {
		return errors.Errorf("unknown interaction %q", f.Interaction)
	}
	if f.TargetUserID == "" {
		return errors.New("interaction requires targetUserId")
	}
	_, err := notifsvc.Notify(ctx, notifsvc.Params{
		Recipient: f.TargetUserID,
		Type:      f.Interaction,
		FromUser:  conn.UserID,
		PostID:    f.PostID,
		CommentID: f.CommentID,
		StoryID:   f.StoryID,
		MessageID: f.MessageID,
		DuetID:    f.DuetID,
	})
	return err
}
