package constants

const (
	CHANNEL_SIZE      = 16                 // 实时视图推送通道大小
	WS_MAX_FRAME_SIZE = 4096               // 客户端上行帧最大字节数
	MARKET_CACHE_KEY  = "market:published" // 职位广场缓存
	APPLY_GUARD_KEY   = "apply_guard:"     // 防重复申请锁前缀，后接 {job_id}:{phone}
	PHONE_PATTERN     = `^\d{11}$`         // 学生/家长手机号
)
