package taxcalc

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client 税额计算RPC客户端
type Client struct {
	calculate      *connect.Client[structpb.Struct, structpb.Struct]
	calculateBatch *connect.Client[structpb.Struct, structpb.Struct]
}

// NewClient 创建客户端
// 参数：httpClient-HTTP客户端，baseURL-服务地址，例如http://localhost:51102
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	return &Client{
		calculate:      connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+CalculateProcedure, opts...),
		calculateBatch: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+CalculateBatchProcedure, opts...),
	}
}

// Calculate 远程计算单条输入
func (c *Client) Calculate(ctx context.Context, in CalculationInput) (CalculationResult, error) {
	var result CalculationResult
	req, err := toStruct(in)
	if err != nil {
		return result, err
	}
	resp, err := c.calculate.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return result, fmt.Errorf("call %s: %w", CalculateProcedure, err)
	}
	if err := fromStruct(resp.Msg, &result); err != nil {
		return result, err
	}
	return result, nil
}

// CalculateBatch 远程批量计算
func (c *Client) CalculateBatch(ctx context.Context, ins []CalculationInput) ([]CalculationResult, error) {
	if ins == nil {
		ins = []CalculationInput{}
	}
	req, err := toStruct(map[string]any{"inputs": ins})
	if err != nil {
		return nil, err
	}
	resp, err := c.calculateBatch.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", CalculateBatchProcedure, err)
	}
	var out struct {
		Results []CalculationResult `json:"results"`
	}
	if err := fromStruct(resp.Msg, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}
