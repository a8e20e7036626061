package push

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// keeper tracks live websocket connections and each one's subscribed
// instruments.
type keeper struct {
	mx     sync.RWMutex
	active map[*websocket.Conn]struct{}
	subs   map[*websocket.Conn]map[string]struct{}
}

func newKeeper() *keeper {
	return &keeper{
		active: make(map[*websocket.Conn]struct{}),
		subs:   make(map[*websocket.Conn]map[string]struct{}),
	}
}

func (k *keeper) addConn(conn *websocket.Conn) {
	k.mx.Lock()
	defer k.mx.Unlock()
	k.active[conn] = struct{}{}
	k.subs[conn] = make(map[string]struct{})
}

func (k *keeper) walkSubs(fn func(conn *websocket.Conn, instruments map[string]struct{}) error) error {
	k.mx.RLock()
	defer k.mx.RUnlock()

	for conn, instruments := range k.subs {
		if err := fn(conn, instruments); err != nil {
			return err
		}
	}
	return nil
}

func (k *keeper) close(conn *websocket.Conn) {
	k.mx.Lock()
	defer k.mx.Unlock()

	_ = conn.Close()
	delete(k.active, conn)
	delete(k.subs, conn)
}

// keep pumps pings and reads subscription requests off conn until it
// closes or goes quiet, then removes it from the keeper.
func (k *keeper) keep(conn *websocket.Conn) {
	pinger := time.NewTicker(time.Second)
	defer pinger.Stop()

	lastAlive := time.Now()
	const deadlineSeconds = 5
	read := make(chan wsMsg)
	defer k.close(conn)

	ponger := conn.PongHandler()
	conn.SetPongHandler(func(appData string) error {
		lastAlive = time.Now()
		return ponger(appData)
	})

	go func() {
		for {
			mt, data, err := conn.ReadMessage()
			read <- wsMsg{mType: mt, data: data, err: err}
			if err != nil {
				close(read)
				return
			}
		}
	}()

	for {
		select {
		case <-pinger.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
				return
			}
			if time.Since(lastAlive).Seconds() > deadlineSeconds {
				return
			}
		case msg, ok := <-read:
			if !ok || msg.err != nil {
				return
			}

			switch msg.mType {
			case websocket.CloseMessage:
				return
			case websocket.TextMessage:
				instrument := string(msg.data)
				if instrument == "" {
					continue
				}
				k.mx.Lock()
				k.subs[conn][instrument] = struct{}{}
				k.mx.Unlock()
			}

			lastAlive = time.Now()
		}
	}
}
