package https_server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tutor_match_server/internal/config"
	"tutor_match_server/internal/dto/request"
	"tutor_match_server/internal/dto/respond"
	"tutor_match_server/internal/fee"
	"tutor_match_server/internal/handler"
	"tutor_match_server/internal/https_server"
	"tutor_match_server/internal/model"
	"tutor_match_server/internal/realtime"
	"tutor_match_server/internal/service"
	"tutor_match_server/pkg/errorx"
	"tutor_match_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJobService struct{}

type stubOrderService struct{}

type stubProfileService struct{}

type stubAdminService struct{}

func (stubJobService) PostJob(context.Context, request.PostJobRequest) (*respond.PostJobRespond, error) {
	return &respond.PostJobRespond{ID: 1, Status: "pending"}, nil
}
func (stubJobService) ListPublishedJobs(context.Context) ([]model.Job, error) { return nil, nil }
func (stubJobService) ListMarketplace(context.Context, string) ([]respond.MarketJobRespond, error) {
	return []respond.MarketJobRespond{}, nil
}
func (stubJobService) ListPendingJobs(context.Context) ([]respond.JobRespond, error) {
	return []respond.JobRespond{}, nil
}
func (stubJobService) UpdateJobStatus(context.Context, int64, string) error { return nil }
func (stubJobService) RelistJob(context.Context, int64) error               { return nil }
func (stubJobService) DeleteJob(context.Context, int64) error               { return nil }
func (stubJobService) ParentLogin(_ context.Context, phone, _ string) (*respond.ParentDashboardRespond, error) {
	return &respond.ParentDashboardRespond{Phone: phone}, nil
}
func (stubJobService) ParentDeleteJob(context.Context, request.ParentDeleteJobRequest) error {
	return nil
}
func (stubJobService) SuggestJobDetails(context.Context, string, string) (*respond.SuggestionRespond, error) {
	return &respond.SuggestionRespond{}, nil
}
func (stubJobService) QuoteFee(string, int, string) fee.Quote { return fee.Quote{} }

func (stubOrderService) SubmitApplication(context.Context, request.ApplyRequest) (*respond.ApplyRespond, error) {
	return &respond.ApplyRespond{OrderId: 1, Status: "applying"}, nil
}
func (stubOrderService) ListOrdersForStudent(context.Context, string) (*respond.StudentOrdersRespond, error) {
	return &respond.StudentOrdersRespond{}, nil
}
func (stubOrderService) ListOrdersForAdmin(context.Context, []string) ([]respond.OrderRespond, error) {
	return []respond.OrderRespond{}, nil
}
func (stubOrderService) UpdateOrderStatus(context.Context, int64, string) error { return nil }
func (stubOrderService) ParentUpdateOrderStatus(context.Context, request.ParentDecideRequest) error {
	return nil
}
func (stubOrderService) ConfirmPayment(context.Context, int64, string) error { return nil }

func (stubProfileService) Login(context.Context, request.StudentLoginRequest) (*respond.StudentLoginRespond, error) {
	return &respond.StudentLoginRespond{}, nil
}
func (stubProfileService) GetProfile(context.Context, string) (*respond.ProfileRespond, error) {
	return nil, errorx.New(errorx.CodeNotFound, "尚未填写简历")
}
func (stubProfileService) UpsertProfile(context.Context, request.ProfileRequest) (*respond.ProfileRespond, error) {
	return &respond.ProfileRespond{}, nil
}

func (stubAdminService) Login(context.Context, string, string) (*respond.AdminLoginRespond, error) {
	return &respond.AdminLoginRespond{Token: "t"}, nil
}
func (stubAdminService) Dashboard(context.Context) (*respond.AdminDashboardRespond, error) {
	return &respond.AdminDashboardRespond{}, nil
}

type body struct {
	Code int             `json:"code"`
	Msg  any             `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func mustJSON(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func doReq(t *testing.T, client *http.Client, method, url string, payload io.Reader, authHeader string) (int, body) {
	t.Helper()
	req, err := http.NewRequest(method, url, payload)
	require.NoError(t, err)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var b body
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&b))
	}
	return resp.StatusCode, b
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, handler.InitTrans("zh"))
	jwt.Init("smoke-secret", 10)

	svcs := &service.Services{
		Job:     stubJobService{},
		Order:   stubOrderService{},
		Profile: stubProfileService{},
		Admin:   stubAdminService{},
	}
	engine := https_server.Init(handler.NewHandlers(svcs, realtime.NewHub()), &config.Config{})
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	return server
}

func TestHTTPEndpoints_Smoke(t *testing.T) {
	server := newServer(t)
	client := &http.Client{Timeout: 5 * time.Second}

	token, _, err := jwt.GenerateAdminToken("desktop")
	require.NoError(t, err)
	authHeader := "Bearer " + token

	testCases := []struct {
		name     string
		method   string
		path     string
		payload  any
		auth     string
		wantHTTP int
		wantCode int
	}{
		{name: "发布职位", method: http.MethodPost, path: "/api/job/post", payload: map[string]any{"title": "t"}},
		{name: "职位广场", method: http.MethodGet, path: "/api/job/market"},
		{name: "广场手机号错误", method: http.MethodGet, path: "/api/job/market?phone=123", wantCode: errorx.CodeInvalidParam},
		{name: "AI 建议", method: http.MethodPost, path: "/api/job/suggest", payload: map[string]any{"grade": "高一", "subject": "数学"}},
		{name: "AI 建议缺参数", method: http.MethodPost, path: "/api/job/suggest", payload: map[string]any{}, wantCode: errorx.CodeInvalidParam},
		{name: "信息费试算", method: http.MethodGet, path: "/api/fee/quote?grade=高一&frequency=2&price=100"},
		{name: "学生登录", method: http.MethodPost, path: "/api/student/login", payload: map[string]any{"phone": "13800000001", "password": "x"}},
		{name: "查询简历", method: http.MethodGet, path: "/api/student/profile?phone=13800000001", wantCode: errorx.CodeNotFound},
		{name: "保存简历", method: http.MethodPost, path: "/api/student/profile", payload: map[string]any{"phone": "13800000001"}},
		{name: "申请", method: http.MethodPost, path: "/api/student/apply", payload: map[string]any{"job_id": 1, "phone": "13800000001"}},
		{name: "学生订单", method: http.MethodGet, path: "/api/student/orders?phone=13800000001"},
		{name: "确认支付", method: http.MethodPost, path: "/api/student/order/pay", payload: map[string]any{"order_id": 1, "phone": "13800000001"}},
		{name: "家长登录", method: http.MethodPost, path: "/api/parent/login", payload: map[string]any{"phone": "13900000000", "password": "x"}},
		{name: "家长审核状态非法", method: http.MethodPost, path: "/api/parent/order/status", payload: map[string]any{"phone": "13900000000", "password": "x", "order_id": 1, "status": "final_approved"}, wantCode: errorx.CodeInvalidParam},
		{name: "家长删除职位", method: http.MethodPost, path: "/api/parent/job/delete", payload: map[string]any{"phone": "13900000000", "password": "x", "job_id": 1}},
		{name: "管理员登录", method: http.MethodPost, path: "/api/admin/login", payload: map[string]any{"surface": "desktop", "code": "x"}},
		{name: "未登录看后台", method: http.MethodGet, path: "/api/admin/dashboard", wantHTTP: http.StatusUnauthorized, wantCode: errorx.CodeUnauthorized},
		{name: "管理后台", method: http.MethodGet, path: "/api/admin/dashboard", auth: authHeader},
		{name: "待审核职位", method: http.MethodGet, path: "/api/admin/job/pending", auth: authHeader},
		{name: "审核职位", method: http.MethodPost, path: "/api/admin/job/status", payload: map[string]any{"job_id": 1, "status": "published"}, auth: authHeader},
		{name: "重新上架", method: http.MethodPost, path: "/api/admin/job/relist", payload: map[string]any{"job_id": 1}, auth: authHeader},
		{name: "删除职位", method: http.MethodPost, path: "/api/admin/job/delete", payload: map[string]any{"job_id": 1}, auth: authHeader},
		{name: "订单列表", method: http.MethodGet, path: "/api/admin/order/list?status=applying&status=parent_approved", auth: authHeader},
		{name: "审核订单", method: http.MethodPost, path: "/api/admin/order/status", payload: map[string]any{"order_id": 1, "status": "parent_approved"}, auth: authHeader},
		{name: "未登录的实时后台", method: http.MethodGet, path: "/ws/view?view=admin_dashboard", wantCode: errorx.CodeUnauthorized},
		{name: "未知视图", method: http.MethodGet, path: "/ws/view?view=chat", wantCode: errorx.CodeInvalidParam},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var payload io.Reader
			if tc.payload != nil {
				payload = mustJSON(t, tc.payload)
			}
			status, b := doReq(t, client, tc.method, server.URL+tc.path, payload, tc.auth)
			wantHTTP, wantCode := tc.wantHTTP, tc.wantCode
			if wantHTTP == 0 {
				wantHTTP = http.StatusOK
			}
			if wantCode == 0 {
				wantCode = errorx.CodeSuccess
			}
			assert.Equal(t, wantHTTP, status)
			assert.Equal(t, wantCode, b.Code, "msg=%v", b.Msg)
		})
	}

	resp, err := client.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebSocketView_Smoke(t *testing.T) {
	server := newServer(t)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/view?view=marketplace"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var frame struct {
		Type string          `json:"type"`
		View string          `json:"view"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "snapshot", frame.Type)
	assert.Equal(t, "marketplace", frame.View)
	assert.JSONEq(t, `[]`, string(frame.Data))
}
