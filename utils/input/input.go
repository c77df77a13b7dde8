package input

import (
	"context"
	"errors"
	"fmt"
	"os"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/jptax-sim/taxcalc"
	"github.com/tsinghua-fib-lab/jptax-sim/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/yaml.v2"
)

var log = logrus.WithField("module", "input")

// ErrNoInput 未配置批量输入
var ErrNoInput = errors.New("no batch input configured")

// Load 加载批量计算输入
// 功能：根据配置从YAML文件或MongoDB读取计算输入
// 参数：ctx-上下文，in-输入配置
// 返回：计算输入列表
// 算法说明：
// 1. 文件加载：配置了File时读取YAML列表
// 2. 数据库加载：配置了URI时连接MongoDB并读取集合中的全部文档
// 3. 二者均未配置时返回ErrNoInput
func Load(ctx context.Context, in config.Input) ([]taxcalc.CalculationInput, error) {
	switch {
	case in.File != "":
		return LoadFile(in.File)
	case in.URI != "":
		client := mongoutil.NewClient(in.URI)
		defer client.Disconnect(context.Background())
		return loadFromMongo(ctx, client.Database(in.GetDb()).Collection(in.GetColl()))
	default:
		return nil, ErrNoInput
	}
}

// LoadFile 从YAML文件读取计算输入列表
func LoadFile(path string) ([]taxcalc.CalculationInput, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	var ins []taxcalc.CalculationInput
	if err := yaml.UnmarshalStrict(b, &ins); err != nil {
		return nil, fmt.Errorf("yaml unmarshal %s: %w", path, err)
	}
	log.Infof("loaded %d inputs from %s", len(ins), path)
	return ins, nil
}

func loadFromMongo(ctx context.Context, coll *mongo.Collection) ([]taxcalc.CalculationInput, error) {
	log.Infof("start fetching from %s.%s", coll.Database().Name(), coll.Name())
	cursor, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	ins := make([]taxcalc.CalculationInput, 0)
	if err := cursor.All(ctx, &ins); err != nil {
		return nil, fmt.Errorf("decode from %s: %w", coll.Name(), err)
	}
	log.Infof("finish fetching %d inputs from %s.%s", len(ins), coll.Database().Name(), coll.Name())
	return ins, nil
}
