package taxcalc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// TaxServiceName RPC服务名
	TaxServiceName = "jptax.v1.TaxService"

	CalculateProcedure      = "/" + TaxServiceName + "/Calculate"
	CalculateBatchProcedure = "/" + TaxServiceName + "/CalculateBatch"
)

// Server 实现税额计算RPC服务
// 说明：请求与响应均为google.protobuf.Struct，可同时使用proto与JSON编码
type Server struct{}

// NewServer 创建新的服务器实例
func NewServer() *Server {
	return &Server{}
}

// NewTaxServiceHandler 构造服务的HTTP处理器
// 返回：路由前缀与处理器，可直接注册到mux或sidecar
func NewTaxServiceHandler(s *Server, opts ...connect.HandlerOption) (string, http.Handler) {
	calculate := connect.NewUnaryHandler(CalculateProcedure, s.Calculate, opts...)
	calculateBatch := connect.NewUnaryHandler(CalculateBatchProcedure, s.CalculateBatch, opts...)
	return "/" + TaxServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CalculateProcedure:
			calculate.ServeHTTP(w, r)
		case CalculateBatchProcedure:
			calculateBatch.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// NewServeMux 创建挂载了服务处理器的mux，供独立模式的HTTP服务器使用
func NewServeMux(s *Server, opts ...connect.HandlerOption) *http.ServeMux {
	mux := http.NewServeMux()
	path, handler := NewTaxServiceHandler(s, opts...)
	mux.Handle(path, handler)
	return mux
}

// Calculate 计算单条输入
func (s *Server) Calculate(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	in, err := inputFromStruct(req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	result, err := CalculateInput(in)
	if err != nil {
		log.Errorf("calculate %+v: %v", in, err)
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to calculate: %w", err))
	}
	if !result.IsFinite() {
		return nil, connect.NewError(connect.CodeInternal, errNonFiniteResult)
	}
	out, err := toStruct(result)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}

// CalculateBatch 批量计算
// 请求格式：{"inputs": [{...}, ...]}，响应格式：{"results": [{...}, ...]}
func (s *Server) CalculateBatch(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	list := req.Msg.GetFields()["inputs"].GetListValue()
	if list == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("inputs must be a list"))
	}
	ins := make([]CalculationInput, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		in, err := inputFromStruct(v.GetStructValue())
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("input %d: %w", i, err))
		}
		ins = append(ins, in)
	}
	results, err := CalculateBatch(ins)
	if err != nil {
		log.Errorf("calculate batch of %d: %v", len(ins), err)
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to calculate: %w", err))
	}
	for i, r := range results {
		if !r.IsFinite() {
			return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("input %d: %w", i, errNonFiniteResult))
		}
	}
	out, err := toStruct(map[string]any{"results": results})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	log.Debugf("calculated batch of %d", len(results))
	return connect.NewResponse(out), nil
}

var errNonFiniteResult = errors.New("result is not finite")

// inputFromStruct 将Struct解析为计算输入
// 说明：income必填；数值必须有限；dependents必须为整数
func inputFromStruct(st *structpb.Struct) (CalculationInput, error) {
	var in CalculationInput
	fields := st.GetFields()
	if _, ok := fields["income"]; !ok {
		return in, errors.New("income is required")
	}
	// proto编码可以携带Inf与NaN，JSON转换前拦截
	for _, name := range []string{"income", "deductions", "dependents"} {
		if n, ok := fields[name].GetKind().(*structpb.Value_NumberValue); ok && !isFinite(n.NumberValue) {
			return in, fmt.Errorf("%s must be finite", name)
		}
	}
	if err := fromStruct(st, &in); err != nil {
		return in, err
	}
	return in, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	st := &structpb.Struct{}
	if err := protojson.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("protojson unmarshal: %w", err)
	}
	return st, nil
}

func fromStruct(st *structpb.Struct, v any) error {
	b, err := protojson.Marshal(st)
	if err != nil {
		return fmt.Errorf("protojson marshal: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}
