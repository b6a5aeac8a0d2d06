package sms

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"tutor_match_server/internal/config"
	myredis "tutor_match_server/internal/dao/redis"
	"tutor_match_server/pkg/errorx"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dysmsapi20170525 "github.com/alibabacloud-go/dysmsapi-20170525/v4/client"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	"go.uber.org/zap"
)

// dedupeTTL 同一通知的去重窗口
const dedupeTTL = 10 * time.Minute

func dedupeKey(n Notice) string {
	return "sms_sent:" + string(n.Kind) + ":" + n.Ref + ":" + n.Phone
}

// shouldUseMock 未配置真实 AccessKey 或显式指定 TUTOR_SMS_MODE=mock 时走日志模式
func shouldUseMock(cfg config.NotifyConfig) bool {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("TUTOR_SMS_MODE")))
	if mode == "mock" || mode == "local" || mode == "test" {
		return true
	}
	ak := strings.ToLower(strings.TrimSpace(cfg.AccessKeyID))
	ask := strings.ToLower(strings.TrimSpace(cfg.AccessKeySecret))
	if ak == "" || ask == "" {
		return true
	}
	return strings.Contains(ak, "your accesskey") || strings.Contains(ask, "your accesskey")
}

// New 按配置创建通知器
func New(cfg config.NotifyConfig, cache myredis.CacheService) (Notifier, error) {
	if shouldUseMock(cfg) {
		zap.L().Warn("SMS notifier in mock mode, notices are only logged")
		return &logNotifier{cache: cache}, nil
	}

	conf := &openapi.Config{
		AccessKeyId:     tea.String(cfg.AccessKeyID),
		AccessKeySecret: tea.String(cfg.AccessKeySecret),
		Endpoint:        tea.String("dysmsapi.aliyuncs.com"),
	}
	client, err := dysmsapi20170525.NewClient(conf)
	if err != nil {
		return nil, err
	}
	return &aliyunNotifier{client: client, cache: cache, cfg: cfg}, nil
}

// claim 占用去重键；已发送过返回 false
func claim(ctx context.Context, cache myredis.CacheService, n Notice) (bool, error) {
	if cache == nil {
		return true, nil
	}
	return cache.SetNX(ctx, dedupeKey(n), "1", dedupeTTL)
}

type logNotifier struct {
	cache myredis.CacheService
}

func (s *logNotifier) Notify(ctx context.Context, n Notice) error {
	ok, err := claim(ctx, s.cache, n)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	zap.L().Info("[MockSMS] notice",
		zap.String("phone", n.Phone),
		zap.String("kind", string(n.Kind)),
		zap.String("ref", n.Ref),
		zap.String("title", n.Title),
	)
	return nil
}

type aliyunNotifier struct {
	client *dysmsapi20170525.Client
	cache  myredis.CacheService
	cfg    config.NotifyConfig
}

func (s *aliyunNotifier) Notify(ctx context.Context, n Notice) error {
	ok, err := claim(ctx, s.cache, n)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	params, err := json.Marshal(map[string]string{"kind": string(n.Kind), "title": n.Title})
	if err != nil {
		return err
	}
	signName := s.cfg.SignName
	if signName == "" {
		signName = "阿里云短信测试"
	}
	req := &dysmsapi20170525.SendSmsRequest{
		SignName:      tea.String(signName),
		TemplateCode:  tea.String(s.cfg.TemplateCode),
		PhoneNumbers:  tea.String(n.Phone),
		TemplateParam: tea.String(string(params)),
	}
	rsp, err := s.client.SendSmsWithOptions(req, &util.RuntimeOptions{})
	if err != nil {
		// 发送失败释放去重键，允许下次重试
		if s.cache != nil {
			_ = s.cache.Delete(ctx, dedupeKey(n))
		}
		return errorx.Wrap(err, errorx.CodeServerBusy, "发送短信失败")
	}
	if rsp.Body != nil && tea.StringValue(rsp.Body.Code) != "OK" {
		zap.L().Warn("aliyun sms rejected",
			zap.String("phone", n.Phone),
			zap.String("code", tea.StringValue(rsp.Body.Code)),
			zap.String("message", tea.StringValue(rsp.Body.Message)),
		)
	}
	return nil
}
