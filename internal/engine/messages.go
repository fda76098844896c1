package engine

// User-facing notice texts.
const (
	MsgListFailed         = "오퍼 목록 조회에 실패했습니다."
	MsgLoginRequired      = "로그인 후 이용 가능합니다."
	MsgAdminCannotCreate  = "관리자 계정은 오퍼 등록을 사용할 수 없습니다."
	MsgLoggedOut          = "로그아웃 되었습니다."
	MsgCreated            = "오퍼가 등록되었습니다."
	MsgCreateFailed       = "오퍼 등록에 실패했습니다."
	MsgReadToggled        = "읽음 상태가 변경되었습니다."
	MsgReadToggleFailed   = "읽음 상태 변경에 실패했습니다."
	MsgConfirmed          = "확인되었습니다."
	MsgConfirmFailed      = "확인 처리에 실패했습니다."
	MsgStatusChanged      = "오퍼 상태가 변경되었습니다."
	MsgStatusChangeFailed = "오퍼 상태 변경에 실패했습니다."
)
