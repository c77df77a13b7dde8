package task

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/syncer/v3"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/jptax-sim/gateway"
	"github.com/tsinghua-fib-lab/jptax-sim/taxcalc"
	"github.com/tsinghua-fib-lab/jptax-sim/utils/config"
)

const (
	SelfName = "jptax" // 本程序在服务集群中的名字

	shutdownTimeout = 5 * time.Second
)

var log = logrus.WithField("module", "task")

// waitForServerReady 轮询健康检查地址直到返回200
func waitForServerReady(ctx context.Context, url string, retryCount int, interval time.Duration) error {
	client := &http.Client{Timeout: interval}
	var lastErr error
	for range retryCount {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request for %s: %w", url, err)
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			err = fmt.Errorf("status %d", resp.StatusCode)
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("server `%v` not ready after %d retries: %w", url, retryCount, lastErr)
}

// Context 服务上下文
// 功能：持有一次服务运行所需的全部组件
// 说明：配置了sidecar时RPC服务注册到sidecar，否则使用独立的HTTP服务器；
// 网关地址为空时不启动REST网关
type Context struct {
	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 辅助程序，处理分布式模式下与syncer的交互
	sidecar *syncer.Sidecar
	// 独立模式下的RPC服务器
	rpc         *http.Server
	rpcListener net.Listener
	// REST网关
	gateway         *http.Server
	gatewayListener net.Listener

	server *taxcalc.Server
	config config.Config

	wg sync.WaitGroup
}

// NewContext 创建新的服务上下文
// 参数：
//   - job: 任务名称
//   - c: 配置对象
//   - sidecar: 外部sidecar实例，为nil时使用独立模式
func NewContext(job string, c config.Config, sidecar *syncer.Sidecar) *Context {
	ctx := &Context{
		job:     job,
		sidecar: sidecar,
		server:  taxcalc.NewServer(),
		config:  c,
	}
	if sidecar != nil {
		ctx.Register(sidecar)
	}
	return ctx
}

// Register 将TaxService注册到sidecar
// 说明：计算是纯函数，无需sidecar加锁
func (ctx *Context) Register(sidecar *syncer.Sidecar) {
	sidecar.Register(
		taxcalc.TaxServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return taxcalc.NewTaxServiceHandler(ctx.server, opts...)
		},
		syncer.WithNoLock(),
	)
}

// Start 启动RPC服务与REST网关
// 算法说明：
// 1. sidecar模式：在协程中运行sidecar.Serve
// 2. 独立模式：监听配置地址并运行HTTP服务器
// 3. 网关：监听配置地址，启动后通过/health等待就绪
func (ctx *Context) Start() error {
	if ctx.sidecar != nil {
		ctx.wg.Add(1)
		go func() {
			defer ctx.wg.Done()
			if err := ctx.sidecar.Serve(); err != nil {
				log.Errorf("sidecar serve: %v", err)
			}
		}()
	} else {
		l, err := net.Listen("tcp", ctx.config.Server.Listen)
		if err != nil {
			return fmt.Errorf("listen %s: %w", ctx.config.Server.Listen, err)
		}
		ctx.rpc = &http.Server{Handler: taxcalc.NewServeMux(ctx.server)}
		ctx.rpcListener = l
		ctx.serve(ctx.rpc, l, "rpc")
	}

	if ctx.config.Server.Gateway != "" {
		l, err := net.Listen("tcp", ctx.config.Server.Gateway)
		if err != nil {
			ctx.Close()
			return fmt.Errorf("listen %s: %w", ctx.config.Server.Gateway, err)
		}
		ctx.gateway = &http.Server{Handler: gateway.NewRouter()}
		ctx.gatewayListener = l
		ctx.serve(ctx.gateway, l, "gateway")
		if err := waitForServerReady(context.Background(), "http://"+l.Addr().String()+"/health", 10, 100*time.Millisecond); err != nil {
			ctx.Close()
			return err
		}
	}
	log.Infof("job %s started", ctx.job)
	return nil
}

func (ctx *Context) serve(srv *http.Server, l net.Listener, name string) {
	log.Infof("%s listening at %v", name, l.Addr())
	ctx.wg.Add(1)
	go func() {
		defer ctx.wg.Done()
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("%s serve: %v", name, err)
		}
	}()
}

// RPCAddr 独立模式下RPC服务器的实际监听地址
func (ctx *Context) RPCAddr() string {
	if ctx.rpcListener == nil {
		return ""
	}
	return ctx.rpcListener.Addr().String()
}

// GatewayAddr 网关的实际监听地址
func (ctx *Context) GatewayAddr() string {
	if ctx.gatewayListener == nil {
		return ""
	}
	return ctx.gatewayListener.Addr().String()
}

// Run 启动服务并阻塞直到c被取消
func (ctx *Context) Run(c context.Context) error {
	if err := ctx.Start(); err != nil {
		return err
	}
	<-c.Done()
	log.Infof("shutting down job %s", ctx.job)
	ctx.Close()
	return nil
}

// Close 关闭全部服务并等待协程退出，可重复调用
func (ctx *Context) Close() {
	if ctx.closed.Swap(true) {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range []*http.Server{ctx.gateway, ctx.rpc} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("shutdown: %v", err)
		}
	}
	if ctx.sidecar != nil {
		ctx.sidecar.Close()
	}
	// wait for graceful stop
	ctx.wg.Wait()
}
