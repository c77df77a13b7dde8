package config

// Input 指定批量计算输入数据来源的配置（文件、MongoDB）
// 功能：定义批量输入的数据源，文件优先于MongoDB
type Input struct {
	File string `yaml:"file,omitempty"` // YAML文件路径（优先级高于MongoDB）
	URI  string `yaml:"uri,omitempty"`  // MongoDB连接字符串
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
}

// GetDb 获取数据库名
func (p Input) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p Input) GetColl() string {
	return p.Col
}

// Server 服务监听配置
type Server struct {
	Listen  string `yaml:"listen,omitempty"`  // RPC监听地址
	Gateway string `yaml:"gateway,omitempty"` // REST网关监听地址，为空则不启动
}

// Config YAML配置文件的根结构
type Config struct {
	Server Server `yaml:"server"`
	Input  Input  `yaml:"input,omitempty"`
}
