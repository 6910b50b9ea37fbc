package worker

import (
	"time"

	orderRepo "shop_backend/internal/domain/order/repository"
	"shop_backend/pkg/logger"

	"go.uber.org/zap"
)

// StampTask 支付确认补写任务：验签已通过但订单状态落库失败时入队，
// 资金在网关侧已扣，本地状态必须最终补上。
type StampTask struct {
	OrderID   string
	PaymentID string
	TxnID     string
	Retry     int
}

// StampPool 补写工作池
type StampPool struct {
	TaskQueue  chan StampTask
	RetryQueue chan StampTask
	Repo       orderRepo.OrderRepository
	WorkerNum  int
	MaxRetry   int
}

// NewStampPool 创建工作池
func NewStampPool(repo orderRepo.OrderRepository, workerNum, bufferSize int) *StampPool {
	return &StampPool{
		TaskQueue:  make(chan StampTask, bufferSize),
		RetryQueue: make(chan StampTask, bufferSize/2),
		Repo:       repo,
		WorkerNum:  workerNum,
		MaxRetry:   3,
	}
}

// Start 启动工作协程与重试协程
func (p *StampPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		go p.worker(i)
	}
	go p.retryWorker()
	logger.Log.Info("payment stamp pool started", zap.Int("workers", p.WorkerNum))
}

func (p *StampPool) worker(id int) {
	for task := range p.TaskQueue {
		if err := p.Repo.MarkPaid(task.OrderID, task.PaymentID, task.TxnID); err != nil {
			logger.Log.Error("stamp task failed",
				zap.Int("worker", id),
				zap.String("orderID", task.OrderID),
				zap.Int("attempt", task.Retry),
				zap.Error(err))

			if task.Retry < p.MaxRetry {
				task.Retry++
				select {
				case p.RetryQueue <- task:
				default:
					p.logDeadLetter(task, err)
				}
			} else {
				p.logDeadLetter(task, err)
			}
			continue
		}

		logger.Log.Info("payment stamped",
			zap.String("orderID", task.OrderID),
			zap.String("paymentID", task.PaymentID),
			zap.Int("attempt", task.Retry))
	}
}

func (p *StampPool) retryWorker() {
	for task := range p.RetryQueue {
		// 退避后重入主队列
		time.Sleep(time.Duration(task.Retry) * time.Second)

		select {
		case p.TaskQueue <- task:
		default:
			p.logDeadLetter(task, nil)
		}
	}
}

// logDeadLetter 超出重试次数或队列打满时落日志，留给人工对账
func (p *StampPool) logDeadLetter(task StampTask, err error) {
	logger.Log.Error("stamp task dropped, manual reconciliation required",
		zap.String("orderID", task.OrderID),
		zap.String("paymentID", task.PaymentID),
		zap.String("txnID", task.TxnID),
		zap.Error(err))
}

// Enqueue 任务入队，队列打满直接落死信日志而不阻塞请求路径
func (p *StampPool) Enqueue(task StampTask) {
	select {
	case p.TaskQueue <- task:
	default:
		p.logDeadLetter(task, nil)
	}
}
