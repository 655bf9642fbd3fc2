package server

// Session 房间看到的连接，测试中可替换为内存实现
type Session interface {
	ID() int32
	Send(data []byte) error
	Close()
	CloseWithoutNotify()
	SetCharacterID(id int32)
}
