package database

import (
	"context"

	"gorm.io/gorm"
)

// txKey context中事务DB的key
// 使用私有类型,避免与其他包的context key冲突
type txKey struct{}

// TxManager 事务管理器
// 实现domain/book.Transactor:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB(避免全局变量)
// 3. 嵌套调用时GORM自动使用Savepoint
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn内的所有Repository操作都会在同一事务中执行:
// fn返回error时自动ROLLBACK,返回nil时自动COMMIT
//
// 使用示例:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    publisher, err := publisherRepo.FindOrCreate(ctx, "Pub1")
//	    if err != nil {
//	        return err // 自动回滚
//	    }
//	    return bookRepo.Create(ctx, book.NewBook(isbn, title, *publisher, authors))
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	db := m.db
	// 已在事务中则复用外层事务DB
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		db = tx
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 将事务DB注入到Context中,Repository的getDB会从context提取
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// getDB 优先返回context中的事务DB
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
