package protocol

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Literal command prefixes multiplexed over the framed text channel.
const (
	CmdQuit            = "/quit"
	CmdFile            = "/FILE"
	CmdCallRequest     = "/VIDEO_CALL_REQUEST"
	CmdCallAccept      = "/VIDEO_CALL_ACCEPT"
	CmdCallReject      = "/VIDEO_CALL_REJECT"
	CmdCallEnd         = "/VIDEO_CALL_END"
	CmdCallInvite      = "/VIDEO_CALL_INVITE"
	CmdCallStart       = "/VIDEO_CALL_START"
	CmdCallRejected    = "/VIDEO_CALL_REJECTED"
	CmdCallEnded       = "/VIDEO_CALL_ENDED"
	CmdCallData        = "/VIDEO_DATA"
	CmdRoomInvite      = "/MULTI_VIDEO_INVITE"
	CmdRoomJoin        = "/MULTI_VIDEO_JOIN"
	CmdRoomLeave       = "/MULTI_VIDEO_LEAVE"
	CmdRoomData        = "/MULTI_VIDEO_DATA"
	CmdCameraStatus    = "/CAMERA_STATUS"
	CmdUserListRequest = "/REQUEST_USERLIST"
	CmdUserList        = "/USERLIST"
)

// Kind identifies the variant a frame payload parsed into.
type Kind int

const (
	KindChat Kind = iota
	KindQuit
	KindPrivate
	KindFile
	KindFileMalformed
	KindPrivateFile
	KindCallRequest
	KindCallAccept
	KindCallReject
	KindCallEnd
	KindCallData
	KindRoomInvite
	KindRoomJoin
	KindRoomLeave
	KindRoomData
	KindCameraStatus
	KindUserListRequest
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindChat:
		return "CHAT"
	case KindQuit:
		return "QUIT"
	case KindPrivate:
		return "PRIVATE"
	case KindFile:
		return "FILE"
	case KindFileMalformed:
		return "FILE_MALFORMED"
	case KindPrivateFile:
		return "PRIVATE_FILE"
	case KindCallRequest:
		return "CALL_REQUEST"
	case KindCallAccept:
		return "CALL_ACCEPT"
	case KindCallReject:
		return "CALL_REJECT"
	case KindCallEnd:
		return "CALL_END"
	case KindCallData:
		return "CALL_DATA"
	case KindRoomInvite:
		return "ROOM_INVITE"
	case KindRoomJoin:
		return "ROOM_JOIN"
	case KindRoomLeave:
		return "ROOM_LEAVE"
	case KindRoomData:
		return "ROOM_DATA"
	case KindCameraStatus:
		return "CAMERA_STATUS"
	case KindUserListRequest:
		return "USERLIST_REQUEST"
	default:
		return "UNKNOWN"
	}
}

// File is a decoded file-share payload. Data stays base64-encoded until the
// receiving side calls Decode; the relay forwards it opaquely.
type File struct {
	Name string
	Size int64
	Data string
}

// Message rebuilds the "/FILE|name|size|base64data" payload.
func (f *File) Message() string {
	return fmt.Sprintf("%s|%s|%d|%s", CmdFile, f.Name, f.Size, f.Data)
}

// Decode returns the raw file bytes.
func (f *File) Decode() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(f.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode file data: %w", err)
	}
	return raw, nil
}

// Command is the tagged variant a frame payload parses into. Only the
// fields relevant to Kind are populated; Raw always holds the original
// payload.
type Command struct {
	Kind   Kind
	Raw    string
	Target string // private/call peer username
	Text   string // chat or private message body
	File   *File  // file-share variants
	Room   string // room identifier
	User   string // named user in room commands
	Status string // camera status
	Blob   string // opaque media payload
}

// Parse classifies a frame payload. Parsing is total: any payload that
// matches no recognized prefix is plain chat.
func Parse(payload string) Command {
	// An empty frame reads as a disconnect, same as /quit.
	if payload == "" || payload == CmdQuit {
		return Command{Kind: KindQuit, Raw: payload}
	}
	if payload == CmdUserListRequest {
		return Command{Kind: KindUserListRequest, Raw: payload}
	}

	if strings.HasPrefix(payload, "@") {
		if cmd, ok := parsePrivate(payload); ok {
			return cmd
		}
		// "@name" with no space and no body reads as plain chat.
		return Command{Kind: KindChat, Raw: payload, Text: payload}
	}

	if strings.HasPrefix(payload, CmdFile+"|") {
		return parseFile(payload, "")
	}

	if strings.HasPrefix(payload, "/") {
		if cmd, ok := parseSignal(payload); ok {
			return cmd
		}
	}

	return Command{Kind: KindChat, Raw: payload, Text: payload}
}

func parsePrivate(payload string) (Command, bool) {
	rest := payload[1:]
	idx := strings.Index(rest, " ")
	if idx <= 0 {
		return Command{}, false
	}

	target := rest[:idx]
	body := rest[idx+1:]

	if strings.HasPrefix(body, CmdFile+"|") {
		cmd := parseFile(body, target)
		cmd.Raw = payload
		return cmd, true
	}

	return Command{Kind: KindPrivate, Raw: payload, Target: target, Text: body}, true
}

// parseFile parses "/FILE|name|size|base64data". Anything other than
// exactly four pipe-delimited fields is malformed.
func parseFile(payload, target string) Command {
	kind := KindFile
	if target != "" {
		kind = KindPrivateFile
	}

	fields := strings.SplitN(payload, "|", 5)
	if len(fields) != 4 {
		return Command{Kind: KindFileMalformed, Raw: payload, Target: target}
	}

	size, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Command{Kind: KindFileMalformed, Raw: payload, Target: target}
	}

	return Command{
		Kind:   kind,
		Raw:    payload,
		Target: target,
		File:   &File{Name: fields[1], Size: size, Data: fields[3]},
	}
}

func parseSignal(payload string) (Command, bool) {
	fields := strings.Split(payload, "|")
	switch fields[0] {
	case CmdCallRequest, CmdCallAccept, CmdCallReject, CmdCallEnd:
		if len(fields) != 2 {
			return Command{}, false
		}
		kind := map[string]Kind{
			CmdCallRequest: KindCallRequest,
			CmdCallAccept:  KindCallAccept,
			CmdCallReject:  KindCallReject,
			CmdCallEnd:     KindCallEnd,
		}[fields[0]]
		return Command{Kind: kind, Raw: payload, Target: fields[1]}, true
	case CmdCallData:
		if len(fields) < 3 {
			return Command{}, false
		}
		blob := strings.Join(fields[2:], "|")
		return Command{Kind: KindCallData, Raw: payload, Target: fields[1], Blob: blob}, true
	case CmdRoomInvite:
		if len(fields) != 3 {
			return Command{}, false
		}
		return Command{Kind: KindRoomInvite, Raw: payload, Room: fields[1], User: fields[2]}, true
	case CmdRoomJoin:
		if len(fields) != 3 {
			return Command{}, false
		}
		return Command{Kind: KindRoomJoin, Raw: payload, Room: fields[1], User: fields[2]}, true
	case CmdRoomLeave:
		if len(fields) != 3 {
			return Command{}, false
		}
		return Command{Kind: KindRoomLeave, Raw: payload, Room: fields[1], User: fields[2]}, true
	case CmdRoomData:
		if len(fields) < 4 {
			return Command{}, false
		}
		blob := strings.Join(fields[3:], "|")
		return Command{Kind: KindRoomData, Raw: payload, Room: fields[1], User: fields[2], Blob: blob}, true
	case CmdCameraStatus:
		if len(fields) != 4 {
			return Command{}, false
		}
		return Command{
			Kind: KindCameraStatus, Raw: payload,
			Room: fields[1], User: fields[2], Status: fields[3],
		}, true
	}
	return Command{}, false
}

// FileMessage builds a "/FILE|name|size|base64data" payload from raw bytes.
func FileMessage(name string, data []byte) string {
	return fmt.Sprintf("%s|%s|%d|%s",
		CmdFile, name, len(data), base64.StdEncoding.EncodeToString(data))
}

// UserList builds a "/USERLIST|u1|u2|..." roster payload.
func UserList(usernames []string) string {
	if len(usernames) == 0 {
		return CmdUserList
	}
	return CmdUserList + "|" + strings.Join(usernames, "|")
}

// ParseUserList extracts usernames from a "/USERLIST|..." payload. The
// second return is false when the payload is not a roster message.
func ParseUserList(payload string) ([]string, bool) {
	if payload == CmdUserList {
		return nil, true
	}
	if !strings.HasPrefix(payload, CmdUserList+"|") {
		return nil, false
	}
	return strings.Split(payload[len(CmdUserList)+1:], "|"), true
}
