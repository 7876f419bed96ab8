// Package assign 담당자 선택 화면의 팀 → 부서 → 구성원 트리와
// 3단 체크박스 상태 관리. 체크 상태는 저장하지 않고 선택된
// 사용자 ID 집합에서 매번 유도한다.
package assign

import (
	"sort"
	"strings"

	"github.com/deul428/QA-checklist/internal/client"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FallbackTeam 소속 정보가 전혀 없는 사용자의 팀 이름
const FallbackTeam = "기타"

// CheckState 체크박스 상태
type CheckState int

const (
	Unchecked CheckState = iota
	Partial
	Checked
)

// koCollator 한국어 로케일 정렬
var koCollator = collate.New(language.Korean)

// Department 트리의 부서 노드. Name이 nil이면 부서 미지정 그룹이다.
type Department struct {
	Name    *string
	Members []client.User
}

// Key 부서 식별 키 (미지정 그룹은 빈 문자열)
func (d Department) Key() string {
	if d.Name == nil {
		return ""
	}
	return *d.Name
}

// Team 트리의 팀 노드
type Team struct {
	Name        string
	Departments []Department
}

// MemberIDs 팀에 속한 전체 사용자 ID
func (t Team) MemberIDs() []string {
	var ids []string
	for _, dept := range t.Departments {
		for _, m := range dept.Members {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// teamKey 사용자의 팀 이름: 본부 → 부서 → 소속 순으로 처음 있는 값
func teamKey(u client.User) string {
	if u.GeneralHeadquarters != "" {
		return u.GeneralHeadquarters
	}
	if u.Department != nil && *u.Department != "" {
		return *u.Department
	}
	if u.Division != "" {
		return u.Division
	}
	return FallbackTeam
}

// isLeader 팀장/본부장 여부 (부서 내 상단 정렬 대상)
func isLeader(u client.User) bool {
	return strings.Contains(u.Position, "팀장") || strings.Contains(u.Position, "본부장")
}

// BuildTree 평면 사용자 목록을 팀 → 부서 → 구성원 트리로 만든다.
// 팀/부서/구성원 모두 한국어 로케일로 정렬하고, 부서 미지정 그룹이
// 먼저, 부서 안에서는 팀장/본부장이 먼저 온다.
func BuildTree(users []client.User) []Team {
	byTeam := make(map[string]map[string][]client.User)
	for _, u := range users {
		team := teamKey(u)
		dept := ""
		if u.Department != nil {
			dept = *u.Department
		}
		if byTeam[team] == nil {
			byTeam[team] = make(map[string][]client.User)
		}
		byTeam[team][dept] = append(byTeam[team][dept], u)
	}

	teamNames := make([]string, 0, len(byTeam))
	for name := range byTeam {
		teamNames = append(teamNames, name)
	}
	sort.Slice(teamNames, func(i, j int) bool {
		return koCollator.CompareString(teamNames[i], teamNames[j]) < 0
	})

	teams := make([]Team, 0, len(teamNames))
	for _, teamName := range teamNames {
		depts := byTeam[teamName]

		deptNames := make([]string, 0, len(depts))
		for name := range depts {
			deptNames = append(deptNames, name)
		}
		sort.Slice(deptNames, func(i, j int) bool {
			// 부서 미지정 그룹이 항상 먼저
			if deptNames[i] == "" {
				return true
			}
			if deptNames[j] == "" {
				return false
			}
			return koCollator.CompareString(deptNames[i], deptNames[j]) < 0
		})

		team := Team{Name: teamName}
		for _, deptName := range deptNames {
			members := depts[deptName]
			sort.SliceStable(members, func(i, j int) bool {
				li, lj := isLeader(members[i]), isLeader(members[j])
				if li != lj {
					return li
				}
				return koCollator.CompareString(members[i].Name, members[j].Name) < 0
			})

			dept := Department{Members: members}
			if deptName != "" {
				name := deptName
				dept.Name = &name
			}
			team.Departments = append(team.Departments, dept)
		}
		teams = append(teams, team)
	}
	return teams
}

// Tree 선택/펼침 상태를 포함한 트리
type Tree struct {
	Teams []Team

	selected map[string]bool
	expanded map[string]bool
}

// NewTree 트리 생성
func NewTree(users []client.User) *Tree {
	return &Tree{
		Teams:    BuildTree(users),
		selected: make(map[string]bool),
		expanded: make(map[string]bool),
	}
}

// Selected 선택된 사용자 ID 목록 (트리 표시 순서)
func (t *Tree) Selected() []string {
	var ids []string
	for _, team := range t.Teams {
		for _, id := range team.MemberIDs() {
			if t.selected[id] {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// IsSelected 사용자 선택 여부
func (t *Tree) IsSelected(userID string) bool {
	return t.selected[userID]
}

// SetSelected 선택 집합을 교체한다 (기존 배정 반영용)
func (t *Tree) SetSelected(userIDs []string) {
	t.selected = make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		t.selected[id] = true
	}
}

// ToggleMember 구성원 선택 토글
func (t *Tree) ToggleMember(userID string) {
	if t.selected[userID] {
		delete(t.selected, userID)
	} else {
		t.selected[userID] = true
	}
}

// stateOf ID 집합의 체크 상태 유도
func (t *Tree) stateOf(ids []string) CheckState {
	if len(ids) == 0 {
		return Unchecked
	}
	selected := 0
	for _, id := range ids {
		if t.selected[id] {
			selected++
		}
	}
	switch selected {
	case 0:
		return Unchecked
	case len(ids):
		return Checked
	default:
		return Partial
	}
}

// TeamState 팀 체크 상태
func (t *Tree) TeamState(teamName string) CheckState {
	for _, team := range t.Teams {
		if team.Name == teamName {
			return t.stateOf(team.MemberIDs())
		}
	}
	return Unchecked
}

// DepartmentState 부서 체크 상태
func (t *Tree) DepartmentState(teamName, deptKey string) CheckState {
	for _, team := range t.Teams {
		if team.Name != teamName {
			continue
		}
		for _, dept := range team.Departments {
			if dept.Key() == deptKey {
				ids := make([]string, 0, len(dept.Members))
				for _, m := range dept.Members {
					ids = append(ids, m.ID)
				}
				return t.stateOf(ids)
			}
		}
	}
	return Unchecked
}

// toggleIDs 전체 선택 상태가 아니면 전체 선택, 전체 선택이면
// 정확히 그 ID들만 해제한다 (부분 선택도 전체 선택으로 간다).
func (t *Tree) toggleIDs(ids []string) {
	if t.stateOf(ids) == Checked {
		for _, id := range ids {
			delete(t.selected, id)
		}
		return
	}
	for _, id := range ids {
		t.selected[id] = true
	}
}

// ToggleTeam 팀 체크박스 토글
func (t *Tree) ToggleTeam(teamName string) {
	for _, team := range t.Teams {
		if team.Name == teamName {
			t.toggleIDs(team.MemberIDs())
			return
		}
	}
}

// ToggleDepartment 부서 체크박스 토글
func (t *Tree) ToggleDepartment(teamName, deptKey string) {
	for _, team := range t.Teams {
		if team.Name != teamName {
			continue
		}
		for _, dept := range team.Departments {
			if dept.Key() == deptKey {
				ids := make([]string, 0, len(dept.Members))
				for _, m := range dept.Members {
					ids = append(ids, m.ID)
				}
				t.toggleIDs(ids)
				return
			}
		}
	}
}

// IsExpanded 팀 펼침 여부
func (t *Tree) IsExpanded(teamName string) bool {
	return t.expanded[teamName]
}

// ToggleExpand 팀 펼침 토글
func (t *Tree) ToggleExpand(teamName string) {
	if t.expanded[teamName] {
		delete(t.expanded, teamName)
	} else {
		t.expanded[teamName] = true
	}
}

// ExpandAll 전체 펼침
func (t *Tree) ExpandAll() {
	for _, team := range t.Teams {
		t.expanded[team.Name] = true
	}
}

// CollapseAll 전체 접기
func (t *Tree) CollapseAll() {
	t.expanded = make(map[string]bool)
}
