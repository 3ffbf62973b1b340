// Package timetable 将选课列表构建为周课表网格。
//
// 流程：时间代码解析 → 连续节次合并 → 颜色分配 → 重叠分栏布局。
// 包内函数均为纯函数，不持有状态，可并发调用。
package timetable
