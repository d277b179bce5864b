package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/qyliu/chatrelay/internal/client"
	"github.com/qyliu/chatrelay/pkg/protocol"
)

// dirSink writes incoming files into a local directory. Name collisions
// overwrite; the relay core never decides persistence policy, this does.
type dirSink struct {
	dir string
}

func (d *dirSink) Save(name string, data []byte) error {
	path := filepath.Join(d.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("*** 已接收文件: %s (%d 字节) ***\n", path, len(data))
	return nil
}

func main() {
	serverAddr := flag.String("server", "localhost:8888", "Server address (e.g., localhost:8888)")
	username := flag.String("username", "", "Username for chat")
	transport := flag.String("transport", client.TransportTCP, "Transport: tcp or ws")
	downloads := flag.String("downloads", ".", "Directory for received files")
	flag.Parse()

	if *username == "" {
		log.Fatal("Username is required. Use -username flag")
	}

	c := client.New(*serverAddr, *username, *transport)
	c.SetFileSink(&dirSink{dir: *downloads})

	if err := c.Connect(); err != nil {
		log.Fatalf("Failed to connect to server: %v", err)
	}
	defer c.Disconnect()

	log.Printf("Connected to %s as %s", *serverAddr, *username)

	go func() {
		for msg := range c.Messages() {
			if users, ok := protocol.ParseUserList(msg); ok {
				fmt.Printf("*** 在线用户: %s ***\n", strings.Join(users, ", "))
				continue
			}
			fmt.Println(msg)
		}
	}()

	fmt.Println("已进入聊天室，输入消息并回车发送 (offline 退出)")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if strings.EqualFold(text, "offline") {
			if err := c.Quit(); err != nil {
				log.Printf("Failed to send quit: %v", err)
			}
			break
		}

		if name, ok := strings.CutPrefix(text, "/sendfile "); ok {
			sendFile(c, strings.TrimSpace(name))
			continue
		}

		if err := c.SendChat(text); err != nil {
			log.Printf("Failed to send message: %v", err)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Error reading input: %v", err)
	}

	log.Println("已退出聊天室")
}

// sendFile shares a local file with the room, or privately when invoked
// as "/sendfile @user path".
func sendFile(c *client.Client, arg string) {
	target := ""
	path := arg
	if strings.HasPrefix(arg, "@") {
		parts := strings.SplitN(arg, " ", 2)
		if len(parts) != 2 {
			log.Println("用法: /sendfile [@用户名] <文件路径>")
			return
		}
		target = parts[0][1:]
		path = strings.TrimSpace(parts[1])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Failed to read file: %v", err)
		return
	}

	name := filepath.Base(path)
	if target != "" {
		err = c.SendPrivateFile(target, name, data)
	} else {
		err = c.SendFile(name, data)
	}
	if err != nil {
		log.Printf("Failed to send file: %v", err)
		return
	}
	fmt.Printf("*** 已发送文件: %s (%d 字节) ***\n", name, len(data))
}
