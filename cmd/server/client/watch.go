package client

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/superpet/superpet-api/internal/engine"
	"github.com/superpet/superpet-api/internal/handlers/ws"
)

var watchDungeon int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the active battle on the websocket feed",
	Long: `Watch connects to the battle feed and prints every round until the battle
ends. With --dungeon it starts a new battle first.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchDungeon, "dungeon", 0, "start a battle in this dungeon")
}

func runWatch(_ *cobra.Command, _ []string) error {
	u := url.URL{Scheme: "ws", Host: feedAddr, Path: "/ws", RawQuery: url.Values{"player": {playerID}}.Encode()}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to battle feed: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("Failed to close feed: %v", err)
		}
	}()

	if watchDungeon > 0 {
		if err := conn.WriteJSON(ws.Command{Type: ws.CommandStart, DungeonID: watchDungeon}); err != nil {
			return fmt.Errorf("failed to start battle: %w", err)
		}
	}

	// the server only sends a snapshot when a battle is in progress
	if watchDungeon == 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}

	for first := true; ; first = false {
		var frame ws.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			var netErr net.Error
			if first && errors.As(err, &netErr) && netErr.Timeout() {
				fmt.Println("no battle in progress")
				return nil
			}
			return fmt.Errorf("feed closed: %w", err)
		}
		if first {
			if err := conn.SetReadDeadline(time.Time{}); err != nil {
				return err
			}
		}

		switch frame.Type {
		case ws.FrameTypeError:
			return fmt.Errorf("%s: %s", frame.Error.Code, frame.Error.Message)
		case ws.FrameSnapshot:
			printBattle(frame.Battle)
			if frame.Battle.State != engine.BattleFighting && watchDungeon == 0 {
				return nil
			}
		case ws.FrameStarted:
			printBattle(frame.Battle)
		case ws.FrameTick:
			for _, entry := range frame.Entries {
				fmt.Printf("[%d] %s\n", entry.Tick, entry.Message)
			}
		case ws.FrameFinished:
			printBattle(frame.Battle)
			if v := frame.Battle.Victory; v != nil {
				fmt.Printf("Victory! +%d exp, +%d gold\n", v.Exp, v.Gold)
			}
			return nil
		case ws.FrameExited:
			fmt.Println("left the battle")
			return nil
		}
	}
}

func printBattle(b *engine.Battle) {
	if b == nil {
		return
	}
	fmt.Printf("%s %s (Lv %d) HP %d | you HP %d/%d [%s]\n",
		b.Monster.Emoji, b.Monster.Name, b.Monster.Level, b.MonsterHP, b.PlayerHP, b.PlayerMaxHP, b.State)
}
