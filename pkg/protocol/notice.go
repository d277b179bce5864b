package protocol

import "fmt"

// Server-generated lines. The dispatcher, not the client, annotates chat
// and file variants with the sender's name; call and media forwards carry
// the sender as an explicit field instead. The exact strings match the
// deployed clients and must not drift.

// AnnotateChat prefixes a payload with the sender name for group delivery.
func AnnotateChat(sender, text string) string {
	return fmt.Sprintf("%s：%s", sender, text)
}

// AnnotatePrivateEcho is the copy echoed back to a private sender.
func AnnotatePrivateEcho(sender, target, text string) string {
	return fmt.Sprintf("[私聊给%s] %s：%s", target, sender, text)
}

// AnnotatePrivate is the copy delivered to a private target.
func AnnotatePrivate(sender, text string) string {
	return fmt.Sprintf("[私聊来自%s] %s：%s", sender, sender, text)
}

// JoinNotice announces a new session to everyone else.
func JoinNotice(username string) string {
	return fmt.Sprintf("【系统】%s 进入了聊天室", username)
}

// LeaveNotice announces a departed session to everyone else.
func LeaveNotice(username string) string {
	return fmt.Sprintf("【系统】%s 离开了聊天室", username)
}

// OfflineNotice tells a sender that a named target is not registered.
func OfflineNotice(username string) string {
	return fmt.Sprintf("【系统】错误：用户 %s 不在线", username)
}

// NameTakenNotice rejects a handshake that presented a registered username.
func NameTakenNotice(username string) string {
	return fmt.Sprintf("【系统】错误：用户名 %s 已被使用", username)
}

// MalformedFileNotice tells a sender its /FILE payload had the wrong shape.
func MalformedFileNotice() string {
	return "【系统】错误：文件消息格式不正确"
}

// KickedNotice is sent to a session about to be kicked by the admin.
func KickedNotice() string {
	return "【系统】您已被管理员踢出聊天室"
}

// KickBroadcast announces an admin kick to everyone else.
func KickBroadcast(username string) string {
	return fmt.Sprintf("【系统】%s 被管理员踢出聊天室", username)
}

// AdminBroadcast wraps an operator message sent from the server console.
func AdminBroadcast(text string) string {
	return fmt.Sprintf("【系统广播】%s", text)
}

// Call-signaling forwards: the relay rewrites the client command into the
// matching notification carrying the sender's name.

func CallInvite(sender string) string   { return CmdCallInvite + "|" + sender }
func CallStart(sender string) string    { return CmdCallStart + "|" + sender }
func CallRejected(sender string) string { return CmdCallRejected + "|" + sender }
func CallEnded(sender string) string    { return CmdCallEnded + "|" + sender }

// CallData rewrites a 1:1 media frame with the sender's name in place of
// the target field.
func CallData(sender, blob string) string {
	return CmdCallData + "|" + sender + "|" + blob
}

// RoomLeaveNotice is the room-leave line broadcast when a room member
// disconnects without sending one itself.
func RoomLeaveNotice(room, username string) string {
	return CmdRoomLeave + "|" + room + "|" + username
}
