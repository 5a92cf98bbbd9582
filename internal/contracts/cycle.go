package contracts

// Refresh cycle state 정의 (SSOT)
// 모든 로그, 스냅샷, 메트릭에서 이 상수를 사용해야 함
//
// 사이클 흐름:
//   Idle → FetchingMentions → FetchingPrices → Classifying → Done | Failed

// CycleState represents the orchestrator position within one refresh cycle
type CycleState string

const (
	// CycleIdle: 사이클 대기
	CycleIdle CycleState = "idle"

	// CycleFetchingMentions: 포럼 스캔 및 멘션 집계
	// 위치: internal/mentions/
	CycleFetchingMentions CycleState = "fetching_mentions"

	// CycleFetchingPrices: 가격 래더 조회
	// 위치: internal/pricing/
	CycleFetchingPrices CycleState = "fetching_prices"

	// CycleClassifying: 라이프사이클 앵커 갱신 및 스테이지 분류
	// 위치: internal/lifecycle/, internal/classifier/
	CycleClassifying CycleState = "classifying"

	// CycleDone: 스냅샷 발행 완료
	CycleDone CycleState = "done"

	// CycleFailed: 타임아웃 또는 에러, 폴백 스냅샷 발행
	CycleFailed CycleState = "failed"
)

// String returns the state name
func (s CycleState) String() string {
	return string(s)
}

// IsTerminal reports whether the cycle has finished
func (s CycleState) IsTerminal() bool {
	return s == CycleDone || s == CycleFailed
}

// AllCycleStates returns all states in cycle order
func AllCycleStates() []CycleState {
	return []CycleState{
		CycleIdle,
		CycleFetchingMentions,
		CycleFetchingPrices,
		CycleClassifying,
		CycleDone,
		CycleFailed,
	}
}

// Snapshot status values. Errors use "error: <message>".
const (
	StatusSuccess  = "success"
	StatusStarting = "starting"
	StatusTimeout  = "timeout"
	StatusErrorPfx = "error: "
)
