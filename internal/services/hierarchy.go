package services

import (
	"strings"

	"vhp/internal/models"

	"gorm.io/gorm"
)

// HierarchyService 厂商层级遍历服务
//
// 遍历在每次调用开始时一次性加载父子边快照，之后全程在内存中
// 进行，不逐跳查库。所有遍历都带已访问集合，畸形的父链（环）
// 不会导致无限循环。
type HierarchyService struct {
	db *gorm.DB
}

func NewHierarchyService(db *gorm.DB) *HierarchyService {
	return &HierarchyService{db: db}
}

// hierarchySnapshot 一次遍历使用的层级快照
type hierarchySnapshot struct {
	byUniqueID map[string]*models.Vendor
	children   map[string][]*models.Vendor
}

// loadSnapshot 加载全部厂商并构建索引
func (s *HierarchyService) loadSnapshot() (*hierarchySnapshot, error) {
	var vendors []*models.Vendor
	if err := s.db.Find(&vendors).Error; err != nil {
		return nil, err
	}

	snapshot := &hierarchySnapshot{
		byUniqueID: make(map[string]*models.Vendor, len(vendors)),
		children:   make(map[string][]*models.Vendor),
	}
	for _, v := range vendors {
		snapshot.byUniqueID[v.UniqueID] = v
	}
	for _, v := range vendors {
		if v.ParentID != nil {
			snapshot.children[*v.ParentID] = append(snapshot.children[*v.ParentID], v)
		}
	}
	return snapshot, nil
}

// GetAncestors 返回厂商的全部上级，自下而上排列
func (s *HierarchyService) GetAncestors(vendorUniqueID string) ([]*models.Vendor, error) {
	snapshot, err := s.loadSnapshot()
	if err != nil {
		return nil, err
	}

	ancestors := []*models.Vendor{}
	visited := map[string]bool{vendorUniqueID: true}

	current := snapshot.byUniqueID[vendorUniqueID]
	for current != nil && current.ParentID != nil {
		parentID := *current.ParentID
		if visited[parentID] {
			// 父链成环，终止遍历
			break
		}
		visited[parentID] = true
		parent := snapshot.byUniqueID[parentID]
		if parent == nil {
			break
		}
		ancestors = append(ancestors, parent)
		current = parent
	}
	return ancestors, nil
}

// GetDescendants 返回厂商的全部下级（广度优先）
func (s *HierarchyService) GetDescendants(vendorUniqueID string) ([]*models.Vendor, error) {
	snapshot, err := s.loadSnapshot()
	if err != nil {
		return nil, err
	}
	return collectDescendants(snapshot, vendorUniqueID), nil
}

// collectDescendants 在快照上做带已访问集合的BFS
func collectDescendants(snapshot *hierarchySnapshot, rootUniqueID string) []*models.Vendor {
	descendants := []*models.Vendor{}
	visited := map[string]bool{rootUniqueID: true}
	queue := []string{rootUniqueID}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		for _, child := range snapshot.children[currentID] {
			if visited[child.UniqueID] {
				continue
			}
			visited[child.UniqueID] = true
			descendants = append(descendants, child)
			queue = append(queue, child.UniqueID)
		}
	}
	return descendants
}

// GetBranchVendors 返回厂商所在分支的全部厂商（上级+下级）
func (s *HierarchyService) GetBranchVendors(vendorUniqueID string) ([]*models.Vendor, error) {
	ancestors, err := s.GetAncestors(vendorUniqueID)
	if err != nil {
		return nil, err
	}
	descendants, err := s.GetDescendants(vendorUniqueID)
	if err != nil {
		return nil, err
	}
	return append(ancestors, descendants...), nil
}

// GetVendorsByRegion 返回指定区域的区域厂商下的全部厂商
func (s *HierarchyService) GetVendorsByRegion(region string) ([]*models.Vendor, error) {
	snapshot, err := s.loadSnapshot()
	if err != nil {
		return nil, err
	}

	regionalVendor := findByLevelAndRegion(snapshot, models.LevelRegional, region)
	if regionalVendor == nil {
		return []*models.Vendor{}, nil
	}
	return collectDescendants(snapshot, regionalVendor.UniqueID), nil
}

// GetVendorsByCity 返回指定城市的城市厂商下的全部厂商
func (s *HierarchyService) GetVendorsByCity(city string) ([]*models.Vendor, error) {
	snapshot, err := s.loadSnapshot()
	if err != nil {
		return nil, err
	}

	var cityVendor *models.Vendor
	for _, v := range snapshot.byUniqueID {
		if v.Level == models.LevelCity && v.City != nil && *v.City == city {
			cityVendor = v
			break
		}
	}
	if cityVendor == nil {
		return []*models.Vendor{}, nil
	}
	return collectDescendants(snapshot, cityVendor.UniqueID), nil
}

// GetVendorsByLevelInRegion 返回区域内指定层级的全部厂商
//
// 超级厂商和区域厂商都会复用这个查询来按层级盘点区域内的下级。
func (s *HierarchyService) GetVendorsByLevelInRegion(level int, region string) ([]*models.Vendor, error) {
	snapshot, err := s.loadSnapshot()
	if err != nil {
		return nil, err
	}

	if level == models.LevelRegional {
		result := []*models.Vendor{}
		for _, v := range snapshot.byUniqueID {
			if v.Level == models.LevelRegional && v.Region != nil && strings.EqualFold(*v.Region, region) {
				result = append(result, v)
			}
		}
		return result, nil
	}

	regionalVendor := findByLevelAndRegion(snapshot, models.LevelRegional, region)
	if regionalVendor == nil {
		return []*models.Vendor{}, nil
	}

	result := []*models.Vendor{}
	for _, v := range collectDescendants(snapshot, regionalVendor.UniqueID) {
		if v.Level == level {
			result = append(result, v)
		}
	}
	return result, nil
}

// HierarchyTree 层级树节点
type HierarchyTree struct {
	Vendor   *models.Vendor   `json:"vendor"`
	Children []*HierarchyTree `json:"children"`
}

// GetHierarchyTree 返回从指定厂商到叶子的完整层级树
func (s *HierarchyService) GetHierarchyTree(vendorUniqueID string) (*HierarchyTree, error) {
	snapshot, err := s.loadSnapshot()
	if err != nil {
		return nil, err
	}

	root := snapshot.byUniqueID[vendorUniqueID]
	if root == nil {
		return nil, nil
	}
	visited := map[string]bool{root.UniqueID: true}
	return buildTree(snapshot, root, visited), nil
}

// GetRegionHierarchyTree 返回指定区域的完整层级树
func (s *HierarchyService) GetRegionHierarchyTree(region string) (*HierarchyTree, error) {
	snapshot, err := s.loadSnapshot()
	if err != nil {
		return nil, err
	}

	regionalVendor := findByLevelAndRegion(snapshot, models.LevelRegional, region)
	if regionalVendor == nil {
		return nil, nil
	}
	visited := map[string]bool{regionalVendor.UniqueID: true}
	return buildTree(snapshot, regionalVendor, visited), nil
}

// buildTree 在快照上递归构建子树，visited防环
func buildTree(snapshot *hierarchySnapshot, vendor *models.Vendor, visited map[string]bool) *HierarchyTree {
	tree := &HierarchyTree{
		Vendor:   vendor,
		Children: []*HierarchyTree{},
	}
	for _, child := range snapshot.children[vendor.UniqueID] {
		if visited[child.UniqueID] {
			continue
		}
		visited[child.UniqueID] = true
		tree.Children = append(tree.Children, buildTree(snapshot, child, visited))
	}
	return tree
}

// findByLevelAndRegion 在快照中找第一个匹配层级与区域的厂商
func findByLevelAndRegion(snapshot *hierarchySnapshot, level int, region string) *models.Vendor {
	for _, v := range snapshot.byUniqueID {
		if v.Level == level && v.Region != nil && strings.EqualFold(*v.Region, region) {
			return v
		}
	}
	return nil
}
