// Package protocol 战斗快照的线上编码：JSON（protojson）与 protobuf（structpb）
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jacl-coder/PixelStorm-RPG/internal/combat"
)

// Encoding 推送帧编码
type Encoding string

const (
	EncodingJSON  Encoding = "json"
	EncodingProto Encoding = "proto"
)

// 帧类型
const (
	FrameSnapshot = "snapshot"
	FrameResult   = "result"
	FrameError    = "error"
)

// ParseEncoding 解析编码参数，空值为JSON
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(strings.ToLower(s)) {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingProto:
		return EncodingProto, nil
	default:
		return "", fmt.Errorf("不支持的编码: %s", s)
	}
}

// Binary 是否为二进制帧
func (e Encoding) Binary() bool {
	return e == EncodingProto
}

// ConvertToStruct 将任意可JSON序列化的值转换为 structpb.Struct
func ConvertToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("序列化失败: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("转换为对象失败: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("构造Struct失败: %w", err)
	}
	return s, nil
}

// ConvertSnapshotToProto 将战斗快照转换为协议消息
func ConvertSnapshotToProto(snap combat.Snapshot) (*structpb.Struct, error) {
	return ConvertToStruct(snap)
}

// EncodeFrame 按编码生成 {"type":..., "payload":...} 帧
func EncodeFrame(frameType string, payload any, enc Encoding) ([]byte, error) {
	body, err := ConvertToStruct(payload)
	if err != nil {
		return nil, err
	}
	frame := &structpb.Struct{Fields: map[string]*structpb.Value{
		"type":    structpb.NewStringValue(frameType),
		"payload": structpb.NewStructValue(body),
	}}

	if enc.Binary() {
		data, err := proto.Marshal(frame)
		if err != nil {
			return nil, fmt.Errorf("编码protobuf帧失败: %w", err)
		}
		return data, nil
	}
	data, err := protojson.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("编码JSON帧失败: %w", err)
	}
	return data, nil
}

// EncodeSnapshot 编码快照帧
func EncodeSnapshot(snap combat.Snapshot, enc Encoding) ([]byte, error) {
	return EncodeFrame(FrameSnapshot, snap, enc)
}

// ErrorPayload 错误帧内容
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// EncodeError 编码错误帧
func EncodeError(message, code string, enc Encoding) ([]byte, error) {
	return EncodeFrame(FrameError, ErrorPayload{Message: message, Code: code}, enc)
}

// DecodeFrame 解码帧，返回类型和内容
func DecodeFrame(data []byte, enc Encoding) (string, map[string]any, error) {
	var frame structpb.Struct
	var err error
	if enc.Binary() {
		err = proto.Unmarshal(data, &frame)
	} else {
		err = protojson.Unmarshal(data, &frame)
	}
	if err != nil {
		return "", nil, fmt.Errorf("解码帧失败: %w", err)
	}

	fields := frame.GetFields()
	frameType := fields["type"].GetStringValue()
	payload := fields["payload"].GetStructValue().AsMap()
	return frameType, payload, nil
}
