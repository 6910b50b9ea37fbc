package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户模块错误 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 商品模块错误 200xx
	ErrProductNotFound  = 20001
	ErrOutOfStock       = 20002
	ErrCategoryInUse    = 20003
	ErrCategoryNotFound = 20004
	ErrCategoryExists   = 20005

	// 订单模块错误 300xx
	ErrOrderNotFound  = 30001
	ErrOrderNotOwned  = 30002
	ErrAlreadyPaid    = 30003

	// 支付模块错误 400xx
	ErrInvalidSignature = 40001
	ErrGatewayError     = 40002
	// ErrPaidNotPersisted 验签已通过但订单状态落库失败，资金侧已扣款，客户端不应重试支付
	ErrPaidNotPersisted = 40003

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
