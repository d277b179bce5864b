package server

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/qyliu/chatrelay/internal/chat"
)

// Console is the operator's admin interface: it reads commands line by
// line (normally from stdin) and acts on the live session registry.
type Console struct {
	dispatcher *chat.Dispatcher
	out        io.Writer
}

// NewConsole creates a Console writing replies to out.
func NewConsole(dispatcher *chat.Dispatcher, out io.Writer) *Console {
	return &Console{dispatcher: dispatcher, out: out}
}

// Run processes commands until in is exhausted.
func (c *Console) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		c.execute(scanner.Text())
	}
}

func (c *Console) execute(line string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	hub := c.dispatcher.Hub()

	switch cmd {
	case "list", "online":
		users := hub.Usernames()
		if len(users) == 0 {
			fmt.Fprintf(c.out, "在线用户 (0人): 无\n")
			return
		}
		fmt.Fprintf(c.out, "在线用户 (%d人): %s\n", len(users), strings.Join(users, ", "))

	case "count":
		fmt.Fprintf(c.out, "当前在线人数: %d\n", hub.Count())

	case "status":
		fmt.Fprintf(c.out, "服务器状态信息:\n")
		fmt.Fprintf(c.out, "  在线人数: %d\n", hub.Count())
		users := hub.Usernames()
		if len(users) == 0 {
			fmt.Fprintf(c.out, "  在线用户: 无\n")
			return
		}
		fmt.Fprintf(c.out, "  在线用户: %s\n", strings.Join(users, ", "))

	case "kick":
		if len(args) == 0 {
			fmt.Fprintf(c.out, "用法: kick <用户名>\n")
			return
		}
		if c.dispatcher.Kick(args[0]) {
			fmt.Fprintf(c.out, "已踢出用户: %s\n", args[0])
			return
		}
		fmt.Fprintf(c.out, "用户 %s 不在线或不存在\n", args[0])

	case "broadcast":
		if len(args) == 0 {
			fmt.Fprintf(c.out, "用法: broadcast <消息>\n")
			return
		}
		message := strings.Join(args, " ")
		c.dispatcher.SystemBroadcast(message)
		fmt.Fprintf(c.out, "已发送系统广播: %s\n", message)

	case "help":
		fmt.Fprintf(c.out, "可用命令:\n")
		fmt.Fprintf(c.out, "  list/online - 查看在线用户\n")
		fmt.Fprintf(c.out, "  count - 查看在线人数\n")
		fmt.Fprintf(c.out, "  status - 查看服务器详细状态\n")
		fmt.Fprintf(c.out, "  kick <用户名> - 踢出指定用户\n")
		fmt.Fprintf(c.out, "  broadcast <消息> - 发送系统广播消息\n")
		fmt.Fprintf(c.out, "  help - 显示此帮助信息\n")

	default:
		fmt.Fprintf(c.out, "未知命令: %s。输入 'help' 查看可用命令。\n", line)
	}
}
