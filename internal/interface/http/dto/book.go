package dto

// AddBookRequest HTTP上架请求
// validator tag说明:
// - required: 必填字段
// - dive: 逐个校验authors中的元素
// - datetime: 出生日期格式为2006-01-02
type AddBookRequest struct {
	ISBN      string          `json:"isbn" binding:"required,max=32" example:"9787115428028"`
	Title     string          `json:"title" binding:"required,max=255" example:"Go语言实战"`
	Publisher string          `json:"publisher" binding:"required,max=255" example:"人民邮电出版社"`
	Authors   []AuthorRequest `json:"authors" binding:"dive"`
}

// AuthorRequest 上架时提交的作者
type AuthorRequest struct {
	Name      string `json:"name" binding:"required,max=255" example:"威廉·肯尼迪"`
	BirthDate string `json:"birth_date" binding:"omitempty,datetime=2006-01-02" example:"1970-01-01"`
}

// UpdateBookRequest 修改书名请求
type UpdateBookRequest struct {
	Title string `json:"title" binding:"required,max=255" example:"Go语言实战(第2版)"`
}
