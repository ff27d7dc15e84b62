// Application entry point: a terminal client that joins a room through the
// lobby API and runs the game session over the websocket connection.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mayurg/scribblearena/internal/conn"
	"github.com/mayurg/scribblearena/internal/game"
	"github.com/mayurg/scribblearena/internal/lobby"
	"github.com/mayurg/scribblearena/internal/logger"
	"github.com/mayurg/scribblearena/internal/message"
	"github.com/mayurg/scribblearena/internal/util"
)

func main() {
	configPath := flag.String("config", "client_config.json", "path to the config file")
	username := flag.String("username", "", "player name")
	roomName := flag.String("room", "", "room to join")
	createRoom := flag.Bool("create", false, "create the room before joining")
	maxPlayers := flag.Int("max-players", 8, "room size when creating")
	flag.Parse()

	config, err := util.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v, using defaults\n", err)
	}
	logger.InitLogger(config.Log)
	clientLogger := logger.NewLogger("client")

	if *username == "" || *roomName == "" {
		clientLogger.Fatal("both -username and -room are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	setup := lobby.NewClient(config.HTTPBaseURL, logger.NewLogger("lobby"))
	if *createRoom {
		if err := setup.CreateRoom(ctx, *roomName, *maxPlayers); err != nil {
			clientLogger.Fatalf("create room: %v", err)
		}
	}
	if err := setup.JoinRoom(ctx, *username, *roomName); err != nil {
		clientLogger.Fatalf("join room: %v", err)
	}

	codec := message.NewCodec()
	manager := conn.NewManager(conn.Config{
		URL:      config.WSURL,
		Username: *username,
		RoomName: *roomName,
	}, codec, logger.NewLogger("conn"))
	session := game.NewSession(*username, *roomName, manager, codec, logger.NewLogger("game"))

	go manager.Run()
	go session.Run()
	go printEvents(session, manager)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := session.SendChat(scanner.Text()); err != nil {
				clientLogger.Warnf("chat not sent: %v", err)
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		clientLogger.Info("leaving room")
		session.Disconnect()
	case <-session.Done():
		if err := session.Err(); err != nil {
			clientLogger.Errorf("session ended: %v", err)
		}
	}

	select {
	case <-manager.Done():
	case <-time.After(5 * time.Second):
		manager.Close()
	}
}

// printEvents renders the session's state streams as terminal output.
func printEvents(session *game.Session, manager *conn.Manager) {
	chat, stopChat := session.Chat()
	phases, stopPhases := session.Phase()
	words, stopWords := session.NewWords()
	chosen, stopChosen := session.ChosenWords()
	events, stopEvents := manager.Events()
	defer func() {
		stopChat()
		stopPhases()
		stopWords()
		stopChosen()
		stopEvents()
	}()

	for {
		select {
		case result, ok := <-chat:
			if !ok {
				return
			}
			for _, edit := range result.Edits {
				switch m := edit.Item.(type) {
				case message.ChatMessage:
					fmt.Printf("[%s] %s\n", m.From, m.Message)
				case message.Announcement:
					fmt.Printf("* %s\n", m.Message)
				}
			}
		case state, ok := <-phases:
			if !ok {
				return
			}
			fmt.Printf("-- phase: %s (%.0fs)", state.Phase, float64(state.Time)/1000)
			if state.DrawingPlayer != "" {
				fmt.Printf(", %s is drawing", state.DrawingPlayer)
			}
			fmt.Println()
		case options := <-words:
			fmt.Printf("-- choose a word: %v\n", options)
		case word := <-chosen:
			fmt.Printf("-- the word was %q\n", word)
		case event, ok := <-events:
			if !ok {
				return
			}
			switch event.Type {
			case conn.EventOpened:
				fmt.Println("-- connected")
			case conn.EventFailed:
				fmt.Printf("-- connection failed: %v\n", event.Err)
			case conn.EventClosed:
				fmt.Println("-- disconnected")
			}
		}
	}
}
