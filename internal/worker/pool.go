package worker

import (
	"sync"

	"github.com/panjf2000/ants"
	log "github.com/sirupsen/logrus"

	"alpha_miner/configs"
)

var (
	globalPool *Pool
	once       sync.Once
)

// Pool is a small ants-backed runner for background tasks the web handlers
// kick off (post-backtest status polling).
type Pool struct {
	workerPool *ants.Pool
}

func GetPool() *Pool {
	once.Do(func() {
		conf := configs.GetGlobalConfig()
		workerPool, err := ants.NewPool(int(conf.SubmitConfig.WorkerNum))
		if err != nil {
			log.Errorf("init worker pool Failed {%s}", err.Error())
			return
		}
		globalPool = &Pool{workerPool: workerPool}
	})
	return globalPool
}

func (p *Pool) Submit(task func()) error {
	return p.workerPool.Submit(task)
}

func (p *Pool) Release() {
	if err := p.workerPool.Release(); err != nil {
		log.Errorf("release worker pool Failed {%s}", err.Error())
	}
}
