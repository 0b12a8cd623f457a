// Package swarm 实现编排引擎核心：目标分解（Director）、
// 有界并发分发（Dispatcher）、单专家执行（Executor）、
// 容忍部分失败的结果合成（Synthesizer），以及同步/异步双模式入口
// （Orchestrator）。
//
// 核心保证：
//   - 每个分发的子任务恰好产生一个结果（超时/崩溃也不例外）；
//   - 结果按子任务声明顺序呈现，与完成顺序无关；
//   - 单个专家的失败是数据而非异常，永不中止整个运行；
//   - Job 状态单调：pending → running → completed|failed。
package swarm
