package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"tutor_match_server/pkg/constants"
	"tutor_match_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// 前端与 API 可能不同源
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client 一个浏览器连接
type Client struct {
	Conn     *websocket.Conn
	View     string
	SendBack chan []byte // 给前端

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, view string) *Client {
	return &Client{
		Conn:     conn,
		View:     view,
		SendBack: make(chan []byte, constants.CHANNEL_SIZE),
		done:     make(chan struct{}),
	}
}

// Push 把帧放进发送队列
// 队列满时丢掉最旧的一帧，快照总是完整的，前端只需要最新的
func (c *Client) Push(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		zap.L().Error("marshal ws frame failed", zap.String("view", c.View), zap.Error(err))
		return
	}
	for {
		select {
		case <-c.done:
			return
		case c.SendBack <- data:
			return
		default:
			select {
			case <-c.SendBack:
			default:
			}
		}
	}
}

// PushSnapshot 推送快照
func (c *Client) PushSnapshot(data any) {
	c.Push(Frame{Type: FrameSnapshot, View: c.View, Data: data})
}

// Read 读取前端指令交给 feed 处理，连接断开时返回
func (c *Client) Read(ctx context.Context, feed Feed) {
	c.Conn.SetReadLimit(constants.WS_MAX_FRAME_SIZE)
	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Warn("ws read failed", zap.String("view", c.View), zap.Error(err))
			}
			return
		}
		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil || cmd.Action == "" {
			c.Push(Frame{Type: FrameError, View: c.View, Code: errorx.CodeInvalidParam, Msg: "消息格式错误"})
			continue
		}
		if err := feed.Handle(ctx, cmd); err != nil {
			c.Push(errorFrame(c.View, err))
			continue
		}
		c.Push(Frame{Type: FrameAck, View: c.View, Data: cmd})
	}
}

// Write 把发送队列写到连接
func (c *Client) Write() {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.SendBack:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zap.L().Warn("ws write failed", zap.String("view", c.View), zap.Error(err))
				c.Close()
				return
			}
		}
	}
}

// Close 关闭连接，可重复调用
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.Conn.Close(); err != nil {
			zap.L().Debug("ws close", zap.Error(err))
		}
	})
}

// Serve 升级连接并运行会话，阻塞到连接断开
// 首次查询失败（如家长密码错误）时推送一个 error 帧后断开
func Serve(c *gin.Context, view string, newFeed FeedFactory) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("ws upgrade failed", zap.String("view", view), zap.Error(err))
		return
	}
	client := newClient(conn, view)
	defer client.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// 首个快照先进队列，Start 成功后才启动写协程
	feed := newFeed(client.PushSnapshot)
	if err := feed.Start(ctx); err != nil {
		frame, _ := json.Marshal(errorFrame(view, err))
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, frame)
		return
	}
	defer feed.Close()
	go client.Write()

	zap.L().Info("ws view opened", zap.String("view", view))
	client.Read(ctx, feed)
	zap.L().Info("ws view closed", zap.String("view", view))
}

func errorFrame(view string, err error) Frame {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		return Frame{Type: FrameError, View: view, Code: codeErr.Code, Msg: codeErr.Msg}
	}
	zap.L().Error("ws command failed", zap.String("view", view), zap.Error(err))
	return Frame{Type: FrameError, View: view, Code: errorx.ErrServerBusy.Code, Msg: errorx.ErrServerBusy.Msg}
}
