package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// -------------------- 统计 --------------------

type endpointStats struct {
	success   int
	failed    int
	latencies []time.Duration
}

// Recorder 按接口汇总请求结果
type Recorder struct {
	mu    sync.Mutex
	stats map[string]*endpointStats
	order []string
}

func NewRecorder() *Recorder {
	return &Recorder{stats: make(map[string]*endpointStats)}
}

func (r *Recorder) Add(name string, ok bool, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, exists := r.stats[name]
	if !exists {
		s = &endpointStats{}
		r.stats[name] = s
		r.order = append(r.order, name)
	}
	if ok {
		s.success++
		s.latencies = append(s.latencies, latency)
	} else {
		s.failed++
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

func (r *Recorder) Report(took time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Println("\n=== 压测结果 ===")
	fmt.Printf("耗时: %v  Goroutines: %d\n", took, runtime.NumGoroutine())
	fmt.Printf("%-22s %8s %8s %10s %10s %10s\n", "接口", "成功", "失败", "P50", "P95", "P99")
	total := 0
	for _, name := range r.order {
		s := r.stats[name]
		sort.Slice(s.latencies, func(i, j int) bool { return s.latencies[i] < s.latencies[j] })
		fmt.Printf("%-22s %8d %8d %10v %10v %10v\n", name, s.success, s.failed,
			percentile(s.latencies, 0.50), percentile(s.latencies, 0.95), percentile(s.latencies, 0.99))
		total += s.success
	}
	if took > 0 {
		fmt.Printf("成功请求QPS: %.2f\n", float64(total)/took.Seconds())
	}
}

// -------------------- 客户端 --------------------

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	base  string
	http  *http.Client
	token string
	rec   *Recorder
}

func (c *client) call(name, method, path string, body interface{}) (*envelope, bool) {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		c.rec.Add(name, false, 0)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	latency := time.Since(start)
	if err != nil {
		c.rec.Add(name, false, latency)
		return nil, false
	}
	defer resp.Body.Close()

	var env envelope
	ok := json.NewDecoder(resp.Body).Decode(&env) == nil && env.Success
	c.rec.Add(name, ok, latency)
	return &env, ok
}

// scenario 单个虚拟用户：注册、登录、签到后浏览
func scenario(c *client, rounds int) {
	account := "bench-" + uuid.NewString()[:8] + "@bench.local"
	register := map[string]string{"email": account, "password": "bench123", "nickname": account[:14]}
	if _, ok := c.call("POST /auth/register", http.MethodPost, "/api/auth/register", register); !ok {
		return
	}
	env, ok := c.call("POST /auth/login", http.MethodPost, "/api/auth/login",
		map[string]string{"account": account, "password": "bench123"})
	if !ok {
		return
	}
	var auth struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &auth); err != nil {
		return
	}
	c.token = auth.Token

	c.call("POST /auth/check-in", http.MethodPost, "/api/auth/check-in", nil)
	for i := 0; i < rounds; i++ {
		c.call("GET /courses", http.MethodGet, "/api/courses?page=1&pageSize=10", nil)
		c.call("GET /courses/categories", http.MethodGet, "/api/courses/categories", nil)
		c.call("GET /lives/upcoming", http.MethodGet, "/api/lives/upcoming", nil)
		c.call("GET /points/my", http.MethodGet, "/api/points/my", nil)
		c.call("GET /health", http.MethodGet, "/health", nil)
	}
}

// -------------------- 入口 --------------------

func intArg(pos, def int) int {
	if len(os.Args) > pos {
		if v, err := strconv.Atoi(os.Args[pos]); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func main() {
	concurrency := intArg(1, 5)
	rounds := intArg(2, 10)
	baseURL := os.Getenv("BENCH_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5288"
	}

	fmt.Println("=== 继续教育平台压测 ===")
	fmt.Printf("开始时间: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("目标: %s 虚拟用户: %d 每用户轮次: %d\n", baseURL, concurrency, rounds)

	rec := NewRecorder()
	httpClient := &http.Client{Timeout: 8 * time.Second}

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scenario(&client{base: baseURL, http: httpClient, rec: rec}, rounds)
		}()
	}
	wg.Wait()

	rec.Report(time.Since(start))
	fmt.Println("\n=== 测试完成 ===")
}
