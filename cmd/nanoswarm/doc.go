/*
Package main 提供 nanoswarm 服务端程序入口。

# 概述

cmd/nanoswarm 是蜂群编排引擎的可执行入口，提供 HTTP API 服务、
健康检查和版本查询等子命令。程序支持 YAML 配置文件加载、
结构化日志（zap）、Prometheus 指标采集与 OpenTelemetry 链路追踪。

# 核心类型

  - Server         — 主服务器，组装编排流水线并管理 HTTP 生命周期
  - Middleware     — HTTP 中间件函数签名 func(http.Handler) http.Handler
  - responseWriter — 包装 http.ResponseWriter 以捕获状态码

# 主要能力

  - 子命令：serve（启动服务）、version、health
  - 中间件链：Recovery、RequestID、SecurityHeaders、RequestLogger、
    CORS、RateLimiter（基于 IP）、MetricsMiddleware、OTelTracing
  - 存储装配：Job 存储（inmemory / sqlite）、线程记忆（inmemory / redis）
  - 推理后端：主备双后端 + 故障转移 + 全局限速
  - 优雅关闭：信号监听 → 关闭 HTTP → 刷新遥测
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
