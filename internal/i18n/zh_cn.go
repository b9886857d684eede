package i18n

// ZhCNMessages 简体中文消息目录
// ZhCNMessages Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	// UI - 标题
	"app.title":      "Tasker",
	"route.home":     "任务",
	"route.login":    "登录",
	"route.register": "注册",
	"route.detail":   "任务详情",
	"route.add":      "新建任务",

	// UI - 表单字段
	"field.username":    "用户名",
	"field.password":    "密码",
	"field.title":       "标题",
	"field.description": "描述",

	// 过滤 / 排序
	"filter.all":       "全部",
	"filter.active":    "未完成",
	"filter.completed": "已完成",
	"sort.newest":      "最新在前",
	"sort.oldest":      "最早在前",

	// UI - 状态栏
	"status.ready":     "就绪",
	"status.loading":   "加载中...",
	"status.user":      "已登录用户 %s",
	"status.anonymous": "未登录",
	"status.counts":    "共 %d 项 · 未完成 %d · 已完成 %d",
	"task.done":        "已完成",
	"task.open":        "未完成",
	"task.created":     "创建于 %s",
	"tasks.empty":      "暂无任务",
	"tasks.header":     "编号|状态|标题|创建时间",

	// 操作结果
	"msg.login_ok":        "欢迎，用户 %s",
	"msg.register_ok":     "注册成功，请登录",
	"msg.logout":          "已退出登录",
	"msg.session_expired": "会话已过期，请重新登录",
	"msg.login_required":  "请先登录",
	"msg.added":           "已添加任务 #%d",
	"msg.updated":         "已更新任务 #%d",
	"msg.deleted":         "已删除任务 #%d",
	"msg.fetched":         "已加载 %d 项任务",
	"msg.filter":          "过滤：%s",
	"msg.sort":            "排序：%s",
	"msg.whoami":          "用户 %s",
	"msg.help_hint":       "输入 /help 查看命令",

	// UI - 快捷键
	"keys.auth":   "tab 下一项 · enter 提交 · ctrl+r 登录/注册 · ctrl+c 退出",
	"keys.list":   "a 新建 · 空格 切换状态 · d 删除 · f 过滤 · s 排序 · r 刷新 · enter 打开 · ctrl+o 退出登录 · q 退出",
	"keys.form":   "tab 下一项 · ctrl+s 保存 · esc 返回",
	"keys.detail": "空格 切换状态 · e 编辑 · d 删除 · esc 返回",

	// 提示（REPL）
	"prompt.username":       "用户名：",
	"prompt.password":       "密码：",
	"prompt.description":    "描述（可选）：",
	"prompt.confirm_delete": "删除任务 #%d？[y/N] ",

	// 命令
	"cmd.register": "注册账号",
	"cmd.login":    "登录",
	"cmd.logout":   "退出登录",
	"cmd.whoami":   "显示当前用户",
	"cmd.tasks":    "按当前过滤与排序列出任务",
	"cmd.show":     "查看单个任务",
	"cmd.add":      "添加任务",
	"cmd.done":     "标记为已完成",
	"cmd.undo":     "标记为未完成",
	"cmd.edit":     "修改任务标题",
	"cmd.rm":       "删除任务",
	"cmd.filter":   "设置过滤（all, active, completed）",
	"cmd.sort":     "设置排序（newest, oldest）",
	"cmd.refresh":  "从服务器重新加载任务",
	"cmd.help":     "显示可用命令",
	"cmd.exit":     "退出程序",

	// 错误
	"error.usage":           "用法：%s",
	"error.bad_id":          "无效的任务编号：%q",
	"error.unknown_command": "未知命令：%s（输入 /help 查看）",
	"error.not_found":       "未找到任务 #%d",
	"error.title_required":  "标题不能为空",
	"error.input":           "输入错误：%s",
}
